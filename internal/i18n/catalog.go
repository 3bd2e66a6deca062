// Package i18n holds the localized strings shown to farmers and resolves
// the caller's preferred language against the supported set.
package i18n

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	RainNext24hHeavy     = "rain.next24h.heavy"
	RainNext24hModerate  = "rain.next24h.moderate"
	RainNext24hNone      = "rain.next24h.none"
	RainTomorrowHeavy    = "rain.tomorrow.heavy"
	RainTomorrowModerate = "rain.tomorrow.moderate"
	RainTomorrowNone     = "rain.tomorrow.none"

	AdviceStorm       = "advice.storm"
	AdviceRain        = "advice.rain"
	AdviceCloud       = "advice.cloud"
	AdviceClearHot    = "advice.clearHot"
	AdviceClearNormal = "advice.clearNormal"
	AdviceNormal      = "advice.normal"

	CropWaterTolerant = "crop.waterTolerant"
	CropMedium        = "crop.medium"
	CropHeatTolerant  = "crop.heatTolerant"
	CropCoolSeason    = "crop.coolSeason"
	CropGeneric       = "crop.generic"

	BandCold    = "band.cold"
	BandCool    = "band.cool"
	BandMild    = "band.mild"
	BandWarm    = "band.warm"
	BandHot     = "band.hot"
	BandUnknown = "band.unknown"
)

var (
	Marathi = language.MustParse("mr")

	supported = []language.Tag{language.English, language.Hindi, Marathi}
	matcher   = language.NewMatcher(supported)

	cat = buildCatalog()
)

var translations = map[language.Tag]map[string]string{
	language.English: {
		RainNext24hHeavy:     "Heavy rainfall (%.1f mm) expected in the next 24 hours. Cover stored produce and avoid harvesting or spraying.",
		RainNext24hModerate:  "Moderate rainfall (%.1f mm) expected in the next 24 hours. Monitor the sky before starting field work.",
		RainNext24hNone:      "No significant rain (%.1f mm) expected in the next 24 hours. Clear to carry out field work.",
		RainTomorrowHeavy:    "Heavy rainfall (%.1f mm) expected tomorrow. Plan to protect stored produce and postpone harvesting or spraying.",
		RainTomorrowModerate: "Moderate rainfall (%.1f mm) expected tomorrow. Check the forecast again before scheduling field work.",
		RainTomorrowNone:     "No significant rain (%.1f mm) expected tomorrow. Field work can go ahead as planned.",

		AdviceStorm:       "Thunderstorm warning: secure equipment and loose items, and suspend pesticide spraying.",
		AdviceRain:        "Heavy rainfall expected: cover stored grains and delay irrigation.",
		AdviceCloud:       "Cloudy day: suitable for fertilizer application.",
		AdviceClearHot:    "Hot and dry: good day for harvesting wheat, maize or cotton.",
		AdviceClearNormal: "Clear skies: suitable for sowing or harvesting pulses and cereals.",
		AdviceNormal:      "Normal weather: continue regular farm activities.",

		CropWaterTolerant: "Water-tolerant crops: rice, sugarcane, jute.",
		CropMedium:        "Medium-tolerance crops: maize, soybean, groundnut.",
		CropHeatTolerant:  "Heat-tolerant crops: millet, sorghum, cotton.",
		CropCoolSeason:    "Cool-season crops: wheat, barley, mustard, peas.",
		CropGeneric:       "Seasonal vegetables and pulses.",

		BandCold:    "Too cold for most field crops; hardy greens such as spinach only.",
		BandCool:    "Suitable for wheat, barley and mustard.",
		BandMild:    "Suitable for rice and maize.",
		BandWarm:    "Suitable for cotton, sugarcane and millet.",
		BandHot:     "Heat stress likely; only sorghum and pearl millet with irrigation.",
		BandUnknown: "Crop suitability unavailable without a temperature reading.",
	},
	language.Hindi: {
		RainNext24hHeavy:     "अगले 24 घंटों में भारी वर्षा (%.1f मिमी) की संभावना। भंडारित उपज ढकें, कटाई और छिड़काव न करें।",
		RainNext24hModerate:  "अगले 24 घंटों में मध्यम वर्षा (%.1f मिमी) की संभावना। खेत का काम शुरू करने से पहले मौसम देखें।",
		RainNext24hNone:      "अगले 24 घंटों में बारिश की संभावना नहीं (%.1f मिमी)। खेत का काम किया जा सकता है।",
		RainTomorrowHeavy:    "कल भारी वर्षा (%.1f मिमी) की संभावना। भंडारित उपज बचाने की तैयारी करें, कटाई और छिड़काव टालें।",
		RainTomorrowModerate: "कल मध्यम वर्षा (%.1f मिमी) की संभावना। खेत का काम तय करने से पहले पूर्वानुमान फिर देखें।",
		RainTomorrowNone:     "कल बारिश की संभावना नहीं (%.1f मिमी)। खेत का काम योजना के अनुसार करें।",

		AdviceStorm:       "तूफ़ान की चेतावनी: उपकरण और ढीली वस्तुएँ सुरक्षित करें, कीटनाशक छिड़काव रोकें।",
		AdviceRain:        "भारी वर्षा की संभावना: अनाज ढकें और सिंचाई स्थगित करें।",
		AdviceCloud:       "बादल वाला दिन: उर्वरक डालने के लिए उपयुक्त।",
		AdviceClearHot:    "गर्म और शुष्क: गेहूँ, मक्का या कपास की कटाई के लिए अच्छा दिन।",
		AdviceClearNormal: "साफ आसमान: दालें और अनाज बोने या काटने के लिए उपयुक्त।",
		AdviceNormal:      "सामान्य मौसम: नियमित खेती गतिविधियाँ जारी रखें।",

		CropWaterTolerant: "जल-सहनशील फसलें: धान, गन्ना, जूट।",
		CropMedium:        "मध्यम सहनशील फसलें: मक्का, सोयाबीन, मूँगफली।",
		CropHeatTolerant:  "गर्मी-सहनशील फसलें: बाजरा, ज्वार, कपास।",
		CropCoolSeason:    "ठंडे मौसम की फसलें: गेहूँ, जौ, सरसों, मटर।",
		CropGeneric:       "मौसमी सब्ज़ियाँ और दालें।",
	},
	Marathi: {
		RainNext24hHeavy:     "पुढील 24 तासांत मुसळधार पाऊस (%.1f मिमी) अपेक्षित. साठवलेले धान्य झाका, कापणी व फवारणी टाळा.",
		RainNext24hModerate:  "पुढील 24 तासांत मध्यम पाऊस (%.1f मिमी) अपेक्षित. शेतीचे काम सुरू करण्यापूर्वी हवामान पहा.",
		RainNext24hNone:      "पुढील 24 तासांत पावसाची शक्यता नाही (%.1f मिमी). शेतीचे काम करता येईल.",
		RainTomorrowHeavy:    "उद्या मुसळधार पाऊस (%.1f मिमी) अपेक्षित. साठवलेले धान्य वाचवण्याची तयारी करा, कापणी व फवारणी पुढे ढकला.",
		RainTomorrowModerate: "उद्या मध्यम पाऊस (%.1f मिमी) अपेक्षित. शेतीचे काम ठरवण्यापूर्वी अंदाज पुन्हा पहा.",
		RainTomorrowNone:     "उद्या पावसाची शक्यता नाही (%.1f मिमी). शेतीचे काम ठरल्याप्रमाणे करा.",

		AdviceStorm:       "वादळाची सूचना: उपकरणे व सैल वस्तू सुरक्षित ठेवा, फवारणी थांबवा.",
		AdviceRain:        "मुसळधार पाऊस: धान्य झाकून ठेवा आणि सिंचन पुढे ढकला.",
		AdviceCloud:       "ढगाळ वातावरण: खत टाकण्यासाठी योग्य दिवस.",
		AdviceClearHot:    "उष्ण आणि कोरडे: गहू, मका किंवा कापूस कापणीसाठी योग्य दिवस.",
		AdviceClearNormal: "स्वच्छ आकाश: डाळी व धान्ये पेरणी किंवा कापणीसाठी योग्य.",
		AdviceNormal:      "सामान्य हवामान: नियमित शेतीचे काम सुरू ठेवा.",
	},
}

// buildCatalog registers every English key for every supported language,
// using English text where a translation is missing.
func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, tag := range supported {
		for key, msg := range translations[language.English] {
			if local, ok := translations[tag][key]; ok {
				msg = local
			}
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Tag resolves an Accept-Language style string to one of the supported tags.
// Empty or unsupported input resolves to English.
func Tag(lang string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}

// Printer returns a message printer for the resolved language.
func Printer(lang string) *message.Printer {
	return message.NewPrinter(Tag(lang), message.Catalog(cat))
}

// Title title-cases a condition description using the rules of lang.
func Title(lang, s string) string {
	return cases.Title(Tag(lang)).String(s)
}
