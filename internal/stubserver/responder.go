package stubserver

import "strings"

// medicineEntry is one canned recommendation the responder can match.
type medicineEntry struct {
	Name           string
	Keywords       []string
	Recommendation string
}

// defaultMedicines is a small built-in table standing in for the real AI
// service's medicine knowledge base.
var defaultMedicines = []medicineEntry{
	{
		Name:     "Paracetamol 500mg",
		Keywords: []string{"headache", "fever", "pain", "temperature"},
		Recommendation: "💊 Paracetamol 500mg\n" +
			"Commonly used for mild to moderate pain and fever. Take one tablet every 4-6 hours as needed, not exceeding 4 doses in 24 hours.\n" +
			"⚕️ Medical Disclaimer: This is a general recommendation. Always consult with a healthcare professional before taking any medication.",
	},
	{
		Name:     "Ibuprofen 200mg",
		Keywords: []string{"inflammation", "swelling", "muscle", "sprain", "backache"},
		Recommendation: "💊 Ibuprofen 200mg\n" +
			"An anti-inflammatory for muscle pain, swelling and sprains. Take with food; one to two tablets every 6-8 hours.\n" +
			"⚕️ Medical Disclaimer: This is a general recommendation. Always consult with a healthcare professional before taking any medication.",
	},
	{
		Name:     "Cetirizine 10mg",
		Keywords: []string{"allergy", "allergies", "sneezing", "itchy", "hay fever", "rash"},
		Recommendation: "💊 Cetirizine 10mg\n" +
			"An antihistamine for allergy symptoms such as sneezing, itching and rashes. One tablet daily; may cause drowsiness.\n" +
			"⚕️ Medical Disclaimer: This is a general recommendation. Always consult with a healthcare professional before taking any medication.",
	},
}

// Responder produces canned AI replies by keyword-matching the latest user
// message against the medicine table.
type Responder struct {
	medicines []medicineEntry
}

// NewResponder creates a responder with the built-in medicine table.
func NewResponder() *Responder {
	return &Responder{medicines: defaultMedicines}
}

// Respond returns a general-advice reply plus any medicine recommendations
// matching the latest user message.
func (r *Responder) Respond(latest string) (string, []string) {
	lowered := strings.ToLower(latest)

	var recommendations []string
	for _, med := range r.medicines {
		for _, kw := range med.Keywords {
			if strings.Contains(lowered, kw) {
				recommendations = append(recommendations, med.Recommendation)
				break
			}
		}
		if len(recommendations) == 2 {
			break
		}
	}

	if len(recommendations) > 0 {
		return "Based on what you've described, here is some general guidance along with an over-the-counter option that may help. " +
			"Stay hydrated, rest, and monitor your symptoms. If they persist for more than a few days or worsen, please see a doctor.", recommendations
	}

	return "Thank you for sharing that with me. While I can offer general wellbeing guidance, I'd recommend describing any specific " +
		"symptoms you're experiencing so I can help better. For anything urgent, please contact a healthcare professional directly.", nil
}
