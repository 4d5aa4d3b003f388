package advisory

import (
	"strings"
	"time"

	"github.com/kjstillabower/krishi-assist-service/internal/calendar"
	"github.com/kjstillabower/krishi-assist-service/internal/models"
)

// Thresholds for the insight bands.
const (
	HeatThreshold      = 35 // °C, exclusive
	ColdThreshold      = 10 // °C, exclusive
	HumidThreshold     = 80 // %, exclusive
	DryAirThreshold    = 30 // %, exclusive
	HeavyRainThreshold = 10 // mm, exclusive
	HighWindThreshold  = 25 // km/h, exclusive
)

// Category identifies an entry in the insight table.
type Category string

const (
	CategoryHeat       Category = "heat"
	CategoryCold       Category = "cold"
	CategoryHumid      Category = "humid"
	CategoryDryAir     Category = "dry_air"
	CategoryHeavyRain  Category = "heavy_rain"
	CategoryHighWind   Category = "high_wind"
	CategoryFavourable Category = "favourable"
)

var insights = map[Category]models.Advisory{
	CategoryHeat: {
		EN: "High temperature. Irrigate in the early morning or evening and mulch to retain moisture.",
		HI: "तापमान अधिक है। सुबह जल्दी या शाम को सिंचाई करें और नमी बनाए रखने के लिए मल्चिंग करें।",
	},
	CategoryCold: {
		EN: "Cold conditions. Protect nurseries from frost with light irrigation or covers.",
		HI: "ठंड का मौसम है। पाले से बचाव के लिए नर्सरी में हल्की सिंचाई करें या ढकें।",
	},
	CategoryHumid: {
		EN: "High humidity raises fungal disease risk. Scout crops and avoid excess irrigation.",
		HI: "अधिक नमी से फफूंद रोग का खतरा है। फसल की निगरानी करें और अधिक सिंचाई से बचें।",
	},
	CategoryDryAir: {
		EN: "Dry air increases water loss. Check soil moisture before irrigating.",
		HI: "शुष्क हवा से पानी की हानि बढ़ती है। सिंचाई से पहले मिट्टी की नमी जांचें।",
	},
	CategoryHeavyRain: {
		EN: "Heavy rainfall. Clear field drainage and postpone fertilizer application.",
		HI: "भारी वर्षा हो रही है। खेत की जल निकासी साफ करें और उर्वरक डालना टालें।",
	},
	CategoryHighWind: {
		EN: "Strong winds. Postpone pesticide spraying and stake tall crops.",
		HI: "तेज हवा चल रही है। कीटनाशक छिड़काव टालें और ऊंची फसलों को सहारा दें।",
	},
	CategoryFavourable: {
		EN: "Weather is favourable for routine field operations.",
		HI: "मौसम सामान्य खेती कार्यों के लिए अनुकूल है।",
	},
}

var seasonInsights = map[calendar.Season]models.Advisory{
	calendar.Winter: {
		EN: "Winter season: good time for rabi crop care and light irrigation.",
		HI: "सर्दी का मौसम: रबी फसलों की देखभाल और हल्की सिंचाई का अच्छा समय।",
	},
	calendar.Summer: {
		EN: "Summer season: prepare fields and conserve water for the coming kharif sowing.",
		HI: "गर्मी का मौसम: खेत तैयार करें और आने वाली खरीफ बुवाई के लिए पानी बचाएं।",
	},
	calendar.Monsoon: {
		EN: "Monsoon season: ideal for kharif sowing; watch for waterlogging.",
		HI: "मानसून का मौसम: खरीफ बुवाई के लिए उपयुक्त; जलभराव पर ध्यान दें।",
	},
	calendar.PostMonsoon: {
		EN: "Post-monsoon: harvest kharif crops and prepare for rabi sowing.",
		HI: "मानसून के बाद: खरीफ फसल की कटाई करें और रबी बुवाई की तैयारी करें।",
	},
}

var regionInsights = map[string]models.Advisory{
	"punjab": {
		EN: "Punjab: follow the recommended paddy transplanting dates to save groundwater.",
		HI: "पंजाब: भूजल बचाने के लिए धान रोपाई की अनुशंसित तिथियों का पालन करें।",
	},
	"maharashtra": {
		EN: "Maharashtra: use drip irrigation for sugarcane and cotton where available.",
		HI: "महाराष्ट्र: जहां संभव हो, गन्ना और कपास के लिए ड्रिप सिंचाई का उपयोग करें।",
	},
	"karnataka": {
		EN: "Karnataka: consider millets on rainfed land.",
		HI: "कर्नाटक: वर्षा आधारित भूमि पर मोटे अनाज पर विचार करें।",
	},
	"tamil nadu": {
		EN: "Tamil Nadu: plan samba paddy around the northeast monsoon.",
		HI: "तमिलनाडु: उत्तर-पूर्वी मानसून के अनुसार सांबा धान की योजना बनाएं।",
	},
	"uttar pradesh": {
		EN: "Uttar Pradesh: timely wheat sowing after paddy harvest improves yield.",
		HI: "उत्तर प्रदेश: धान कटाई के बाद समय पर गेहूं बुवाई से उपज बढ़ती है।",
	},
	"rajasthan": {
		EN: "Rajasthan: prefer drought-tolerant bajra and guar on sandy soils.",
		HI: "राजस्थान: रेतीली मिट्टी में सूखा सहनशील बाजरा और ग्वार को प्राथमिकता दें।",
	},
}

// Insight returns the table entry for category.
func Insight(category Category) models.Advisory {
	return insights[category]
}

// Categories returns the threshold categories triggered by reading, in evaluation order.
func Categories(reading models.WeatherReading) []Category {
	var out []Category
	if reading.TemperatureCelsius > HeatThreshold {
		out = append(out, CategoryHeat)
	}
	if reading.TemperatureCelsius < ColdThreshold {
		out = append(out, CategoryCold)
	}
	if reading.HumidityPercent > HumidThreshold {
		out = append(out, CategoryHumid)
	}
	if reading.HumidityPercent < DryAirThreshold {
		out = append(out, CategoryDryAir)
	}
	if reading.RainfallMm > HeavyRainThreshold {
		out = append(out, CategoryHeavyRain)
	}
	if reading.WindSpeedKmh > HighWindThreshold {
		out = append(out, CategoryHighWind)
	}
	if len(out) == 0 {
		out = append(out, CategoryFavourable)
	}
	return out
}

// Insights returns agricultural guidance for reading: threshold advisories, then
// the season line, then a regional tip when region is known.
func Insights(reading models.WeatherReading, region string, month time.Month) []models.Advisory {
	cats := Categories(reading)
	out := make([]models.Advisory, 0, len(cats)+2)
	for _, c := range cats {
		out = append(out, insights[c])
	}
	out = append(out, seasonInsights[calendar.SeasonFor(month)])
	if tip, ok := regionInsights[normalizeRegion(region)]; ok {
		out = append(out, tip)
	}
	return out
}

func normalizeRegion(region string) string {
	return strings.ToLower(strings.TrimSpace(region))
}
