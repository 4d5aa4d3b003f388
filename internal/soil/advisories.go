package soil

import "github.com/kjstillabower/krishi-assist-service/internal/models"

var flagAdvisories = map[models.DeficiencyFlag]models.Advisory{
	models.FlagPHLow: {
		EN: "Soil is acidic. Apply agricultural lime (2-4 quintal per acre) before sowing.",
		HI: "मिट्टी अम्लीय है। बुवाई से पहले कृषि चूना (2-4 क्विंटल प्रति एकड़) डालें।",
	},
	models.FlagPHHigh: {
		EN: "Soil is alkaline. Apply gypsum and well-rotted organic manure.",
		HI: "मिट्टी क्षारीय है। जिप्सम और अच्छी सड़ी हुई जैविक खाद डालें।",
	},
	models.FlagNitrogenLow: {
		EN: "Nitrogen is low. Apply urea in split doses or grow a legume cover crop.",
		HI: "नाइट्रोजन कम है। यूरिया को किस्तों में डालें या दलहनी फसल उगाएं।",
	},
	models.FlagPhosphorusLow: {
		EN: "Phosphorus is low. Apply DAP or single super phosphate at sowing.",
		HI: "फास्फोरस कम है। बुवाई के समय डीएपी या सिंगल सुपर फास्फेट डालें।",
	},
	models.FlagPotassiumLow: {
		EN: "Potassium is low. Apply muriate of potash (MOP).",
		HI: "पोटैशियम कम है। म्यूरेट ऑफ पोटाश (एमओपी) डालें।",
	},
	models.FlagOrganicMatterLow: {
		EN: "Organic matter is low. Add compost, farmyard manure or green manure.",
		HI: "जैविक पदार्थ कम है। कम्पोस्ट, गोबर की खाद या हरी खाद मिलाएं।",
	},
	models.FlagCriticalCondition: {
		EN: "Soil health is critical. Get a full soil test at the nearest Krishi Vigyan Kendra.",
		HI: "मिट्टी की स्थिति गंभीर है। नजदीकी कृषि विज्ञान केंद्र में पूरी मिट्टी जांच कराएं।",
	},
}

// Recommendations returns the advisory for each flag, in flag order.
func Recommendations(flags []models.DeficiencyFlag) []models.Advisory {
	out := make([]models.Advisory, 0, len(flags))
	for _, f := range flags {
		if a, ok := flagAdvisories[f]; ok {
			out = append(out, a)
		}
	}
	return out
}
