package calculators

// ParameterOption is one choice of an enumerated ("select") parameter.
type ParameterOption struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// Parameter describes one input of a calculator for UI form building.
type Parameter struct {
	Name    string            `json:"name"`
	Type    string            `json:"type"` // boolean, number, integer, select
	Label   string            `json:"label"`
	Unit    string            `json:"unit,omitempty"`
	Options []ParameterOption `json:"options,omitempty"`
}

// Descriptor is the UI-facing description of one calculator. It carries no
// scoring logic; it must stay in lockstep with the functions in this package.
type Descriptor struct {
	Key         string      `json:"key"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Parameters  []Parameter `json:"parameters"`
}

// Directory returns the available calculators in a fixed order.
func Directory() []Descriptor {
	return []Descriptor{
		{
			Key:         "curb65",
			Name:        "CURB-65",
			Description: "Score para evaluar severidad de neumonía adquirida en la comunidad",
			Category:    "Respiratorio",
			Parameters: []Parameter{
				{Name: "confusion", Type: "boolean", Label: "Confusión mental"},
				{Name: "urea", Type: "number", Label: "Urea (mg/dL)", Unit: "mg/dL"},
				{Name: "respiratory_rate", Type: "integer", Label: "Frecuencia respiratoria", Unit: "/min"},
				{Name: "blood_pressure_systolic", Type: "integer", Label: "Presión arterial sistólica", Unit: "mmHg"},
				{Name: "blood_pressure_diastolic", Type: "integer", Label: "Presión arterial diastólica", Unit: "mmHg"},
				{Name: "age", Type: "integer", Label: "Edad", Unit: "años"},
			},
		},
		{
			Key:         "wells_pe",
			Name:        "Wells PE",
			Description: "Score para probabilidad de embolia pulmonar",
			Category:    "Cardiovascular",
			Parameters: []Parameter{
				{Name: "clinical_signs_dvt", Type: "boolean", Label: "Signos clínicos de TVP"},
				{Name: "pe_likely", Type: "boolean", Label: "EP es el diagnóstico más probable"},
				{Name: "heart_rate_over_100", Type: "boolean", Label: "FC > 100 lpm"},
				{Name: "immobilization_surgery", Type: "boolean", Label: "Inmovilización/cirugía (4 semanas)"},
				{Name: "previous_pe_dvt", Type: "boolean", Label: "EP o TVP previa"},
				{Name: "hemoptysis", Type: "boolean", Label: "Hemoptisis"},
				{Name: "malignancy", Type: "boolean", Label: "Malignidad activa"},
			},
		},
		{
			Key:         "glasgow_coma",
			Name:        "Escala de Coma de Glasgow",
			Description: "Evaluación del nivel de conciencia",
			Category:    "Neurológico",
			Parameters: []Parameter{
				{Name: "eye_opening", Type: "select", Label: "Apertura ocular", Options: []ParameterOption{
					{Value: 4, Label: "Espontánea"},
					{Value: 3, Label: "Al habla"},
					{Value: 2, Label: "Al dolor"},
					{Value: 1, Label: "Ninguna"},
				}},
				{Name: "verbal_response", Type: "select", Label: "Respuesta verbal", Options: []ParameterOption{
					{Value: 5, Label: "Orientada"},
					{Value: 4, Label: "Confusa"},
					{Value: 3, Label: "Palabras inapropiadas"},
					{Value: 2, Label: "Sonidos incomprensibles"},
					{Value: 1, Label: "Ninguna"},
				}},
				{Name: "motor_response", Type: "select", Label: "Respuesta motora", Options: []ParameterOption{
					{Value: 6, Label: "Obedece órdenes"},
					{Value: 5, Label: "Localiza dolor"},
					{Value: 4, Label: "Retira al dolor"},
					{Value: 3, Label: "Flexión anormal"},
					{Value: 2, Label: "Extensión anormal"},
					{Value: 1, Label: "Ninguna"},
				}},
			},
		},
		{
			Key:         "chads2_vasc",
			Name:        "CHA2DS2-VASc",
			Description: "Riesgo de stroke en fibrilación auricular",
			Category:    "Cardiovascular",
			Parameters: []Parameter{
				{Name: "congestive_heart_failure", Type: "boolean", Label: "Insuficiencia cardíaca congestiva"},
				{Name: "hypertension", Type: "boolean", Label: "Hipertensión"},
				{Name: "age", Type: "integer", Label: "Edad", Unit: "años"},
				{Name: "diabetes", Type: "boolean", Label: "Diabetes"},
				{Name: "stroke_tia_history", Type: "boolean", Label: "Historia de stroke/TIA"},
				{Name: "vascular_disease", Type: "boolean", Label: "Enfermedad vascular"},
				{Name: "sex_female", Type: "boolean", Label: "Sexo femenino"},
			},
		},
		{
			Key:         "apache_ii",
			Name:        "APACHE II",
			Description: "Score de severidad para pacientes críticos (simplificado)",
			Category:    "Cuidados Intensivos",
			Parameters: []Parameter{
				{Name: "temperature", Type: "number", Label: "Temperatura", Unit: "°C"},
				{Name: "mean_arterial_pressure", Type: "number", Label: "Presión arterial media", Unit: "mmHg"},
				{Name: "heart_rate", Type: "integer", Label: "Frecuencia cardíaca", Unit: "lpm"},
				{Name: "glasgow_coma_scale", Type: "integer", Label: "Glasgow Coma Scale"},
				{Name: "age", Type: "integer", Label: "Edad", Unit: "años"},
				{Name: "chronic_health", Type: "boolean", Label: "Enfermedad crónica severa"},
			},
		},
		{
			Key:         "nihss",
			Name:        "NIHSS",
			Description: "National Institutes of Health Stroke Scale",
			Category:    "Neurológico",
			Parameters: []Parameter{
				{Name: "consciousness", Type: "integer", Label: "Nivel de conciencia"},
				{Name: "orientation", Type: "integer", Label: "Orientación"},
				{Name: "commands", Type: "integer", Label: "Seguimiento de órdenes"},
				{Name: "gaze", Type: "integer", Label: "Movimientos oculares"},
				{Name: "visual_fields", Type: "integer", Label: "Campos visuales"},
				{Name: "facial_palsy", Type: "integer", Label: "Parálisis facial"},
				{Name: "motor_arm_left", Type: "integer", Label: "Motor brazo izquierdo"},
				{Name: "motor_arm_right", Type: "integer", Label: "Motor brazo derecho"},
				{Name: "motor_leg_left", Type: "integer", Label: "Motor pierna izquierda"},
				{Name: "motor_leg_right", Type: "integer", Label: "Motor pierna derecha"},
				{Name: "ataxia", Type: "integer", Label: "Ataxia"},
				{Name: "sensory", Type: "integer", Label: "Sensitivo"},
				{Name: "language", Type: "integer", Label: "Lenguaje"},
				{Name: "dysarthria", Type: "integer", Label: "Disartria"},
				{Name: "extinction", Type: "integer", Label: "Extinción/inatención"},
			},
		},
	}
}
