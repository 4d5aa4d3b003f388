package advisory

import (
	"time"

	"github.com/kjstillabower/krishi-assist-service/internal/calendar"
	"github.com/kjstillabower/krishi-assist-service/internal/models"
)

var seasonCrops = map[calendar.CroppingSeason]models.Advisory{
	calendar.Kharif: {
		EN: "Kharif season: rice, maize, cotton, soybean, groundnut, bajra.",
		HI: "खरीफ मौसम: धान, मक्का, कपास, सोयाबीन, मूंगफली, बाजरा।",
	},
	calendar.Rabi: {
		EN: "Rabi season: wheat, mustard, gram, barley, peas.",
		HI: "रबी मौसम: गेहूं, सरसों, चना, जौ, मटर।",
	},
	calendar.Zaid: {
		EN: "Zaid season: watermelon, cucumber, moong, fodder crops.",
		HI: "जायद मौसम: तरबूज, खीरा, मूंग, चारा फसलें।",
	},
}

var (
	heatTolerantCrops = models.Advisory{
		EN: "Current heat suits heat-tolerant crops such as bajra, sorghum and cluster bean.",
		HI: "वर्तमान गर्मी बाजरा, ज्वार और ग्वार जैसी गर्मी सहनशील फसलों के लिए उपयुक्त है।",
	}
	waterLovingCrops = models.Advisory{
		EN: "Heavy rain favours paddy and jute; avoid sowing pulses in waterlogged fields.",
		HI: "भारी वर्षा धान और जूट के लिए अनुकूल है; जलभराव वाले खेतों में दालें न बोएं।",
	}
)

// CropRecommendations returns the crop list for the cropping season of month,
// followed by weather-driven addenda.
func CropRecommendations(reading models.WeatherReading, region string, month time.Month) []models.Advisory {
	out := []models.Advisory{seasonCrops[calendar.CroppingSeasonFor(month)]}
	if reading.TemperatureCelsius > HeatThreshold {
		out = append(out, heatTolerantCrops)
	}
	if reading.RainfallMm > HeavyRainThreshold {
		out = append(out, waterLovingCrops)
	}
	if tip, ok := regionCrops[normalizeRegion(region)]; ok {
		out = append(out, tip)
	}
	return out
}

var regionCrops = map[string]models.Advisory{
	"punjab": {
		EN: "Punjab: wheat-paddy rotation; consider maize or cotton to diversify.",
		HI: "पंजाब: गेहूं-धान चक्र; विविधता के लिए मक्का या कपास पर विचार करें।",
	},
	"maharashtra": {
		EN: "Maharashtra: cotton, soybean, sugarcane, onion.",
		HI: "महाराष्ट्र: कपास, सोयाबीन, गन्ना, प्याज।",
	},
	"rajasthan": {
		EN: "Rajasthan: bajra, guar, mustard, cumin.",
		HI: "राजस्थान: बाजरा, ग्वार, सरसों, जीरा।",
	},
}
