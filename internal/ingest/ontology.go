package ingest

import "github.com/flipbytes-dk/absolutely-you/library/graph"

// ProcedureOntology describes the entity kinds the graph engine should try
// to recognize inside scraped procedure documents.
func ProcedureOntology() []graph.EntityType {
	return []graph.EntityType{
		{
			Name:        "Procedure",
			Description: "A cosmetic procedure offered by the clinic.",
			Fields: []graph.EntityField{
				{Name: "procedure_type", Description: "Surgical, Non-Surgical ..."},
				{Name: "cost_raw", Description: "Original cost string, e.g. 'From $5,500'"},
				{Name: "recovery_time", Description: "e.g. 'one to two weeks'"},
				{Name: "results_duration", Description: "e.g. '3-6 months'"},
			},
		},
		{
			Name:        "BodyArea",
			Description: "An anatomical region that the procedure treats or alters.",
			Fields: []graph.EntityField{
				{Name: "anatomical_region", Description: "e.g. 'Labia minora'"},
			},
		},
		{
			Name:        "PaymentMethod",
			Description: "A way the patient can pay for the procedure.",
			Fields: []graph.EntityField{
				{Name: "provider", Description: "'Cash', 'Visa', 'AfterPay' ..."},
			},
		},
		{
			Name:        "Doctor",
			Description: "A medical professional who performs or must authorise the procedure.",
			Fields: []graph.EntityField{
				{Name: "speciality", Description: "e.g. 'Cosmetic Surgeon'"},
			},
		},
	}
}
