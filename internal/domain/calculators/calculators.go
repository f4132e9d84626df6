// Package calculators implements the deterministic clinical scoring engine:
// one pure function per clinical score. Every function is side-effect free
// and safe to call concurrently; identical inputs always produce identical
// results. Threshold directions (which side is inclusive) follow the
// published scales and must not be "simplified".
package calculators

import "fmt"

// CURB65 scores community-acquired pneumonia severity. One point each for:
// confusion, urea > 19 mg/dL, respiratory rate >= 30/min, low blood pressure
// (systolic < 90 or diastolic <= 60), and age >= 65.
func CURB65(confusion bool, urea float64, respiratoryRate, systolic, diastolic, age int) (*Result, error) {
	if err := validateRange(urea, 0, 500, "Urea"); err != nil {
		return nil, err
	}
	if err := validateRange(float64(respiratoryRate), 0, 100, "Frecuencia respiratoria"); err != nil {
		return nil, err
	}
	if err := validateRange(float64(systolic), 40, 300, "Presión arterial sistólica"); err != nil {
		return nil, err
	}
	if err := validateRange(float64(diastolic), 20, 200, "Presión arterial diastólica"); err != nil {
		return nil, err
	}
	if err := validateRange(float64(age), 0, 150, "Edad"); err != nil {
		return nil, err
	}

	score := 0
	if confusion {
		score++
	}
	if urea > 19 {
		score++
	}
	if respiratoryRate >= 30 {
		score++
	}
	if systolic < 90 || diastolic <= 60 {
		score++
	}
	if age >= 65 {
		score++
	}

	var (
		risk            RiskLevel
		interpretation  string
		recommendations string
	)
	switch {
	case score == 0:
		risk = RiskLow
		interpretation = "Riesgo bajo de mortalidad (0.7%)"
		recommendations = "Manejo ambulatorio. Considerar tratamiento oral."
	case score == 1:
		risk = RiskLow
		interpretation = "Riesgo bajo de mortalidad (2.1%)"
		recommendations = "Manejo ambulatorio. Considerar tratamiento oral."
	case score == 2:
		risk = RiskModerate
		interpretation = "Riesgo moderado de mortalidad (9.2%)"
		recommendations = "Considerar hospitalización. Tratamiento antibiótico endovenoso."
	case score == 3:
		risk = RiskHigh
		interpretation = "Riesgo alto de mortalidad (14.5%)"
		recommendations = "Hospitalización recomendada. Considerar UCI si hay deterioro."
	default: // score >= 4
		risk = RiskSevere
		interpretation = "Riesgo muy alto de mortalidad (40%)"
		recommendations = "Hospitalización urgente. Considerar manejo en UCI."
	}

	return &Result{Score: float64(score), RiskLevel: risk, Interpretation: interpretation, Recommendations: recommendations}, nil
}

// WellsPEInput holds the seven binary criteria of the Wells score for
// pulmonary embolism.
type WellsPEInput struct {
	ClinicalSignsDVT      bool // 3.0 points
	PELikely              bool // 3.0 points
	HeartRateOver100      bool // 1.5 points
	ImmobilizationSurgery bool // 1.5 points
	PreviousPEDVT         bool // 1.5 points
	Hemoptysis            bool // 1.0 point
	Malignancy            bool // 1.0 point
}

// WellsPE scores pulmonary-embolism probability. Buckets: <=4.0 low,
// (4.0, 6.0] moderate, >6.0 high.
func WellsPE(in WellsPEInput) (*Result, error) {
	score := 0.0
	if in.ClinicalSignsDVT {
		score += 3.0
	}
	if in.PELikely {
		score += 3.0
	}
	if in.HeartRateOver100 {
		score += 1.5
	}
	if in.ImmobilizationSurgery {
		score += 1.5
	}
	if in.PreviousPEDVT {
		score += 1.5
	}
	if in.Hemoptysis {
		score += 1.0
	}
	if in.Malignancy {
		score += 1.0
	}

	var (
		risk            RiskLevel
		interpretation  string
		recommendations string
	)
	switch {
	case score <= 4.0:
		risk = RiskLow
		interpretation = fmt.Sprintf("Probabilidad baja de EP (%.1f puntos). Probabilidad < 12%%", score)
		recommendations = "Considerar dímero D. Si negativo, EP poco probable."
	case score <= 6.0:
		risk = RiskModerate
		interpretation = fmt.Sprintf("Probabilidad moderada de EP (%.1f puntos). Probabilidad 12-37%%", score)
		recommendations = "Realizar estudios de imagen (AngioTC o gammagrafía)."
	default:
		risk = RiskHigh
		interpretation = fmt.Sprintf("Probabilidad alta de EP (%.1f puntos). Probabilidad > 37%%", score)
		recommendations = "AngioTC urgente. Considerar anticoagulación empírica si hay retraso."
	}

	return &Result{Score: score, RiskLevel: risk, Interpretation: interpretation, Recommendations: recommendations}, nil
}

// GlasgowComaScale sums the three components of the GCS (range 3-15).
// >=13 mild, 9-12 moderate, <=8 severe.
func GlasgowComaScale(eyeOpening, verbalResponse, motorResponse int) (*Result, error) {
	if err := validateRange(float64(eyeOpening), 1, 4, "Apertura ocular"); err != nil {
		return nil, err
	}
	if err := validateRange(float64(verbalResponse), 1, 5, "Respuesta verbal"); err != nil {
		return nil, err
	}
	if err := validateRange(float64(motorResponse), 1, 6, "Respuesta motora"); err != nil {
		return nil, err
	}

	score := eyeOpening + verbalResponse + motorResponse

	var (
		risk            RiskLevel
		interpretation  string
		recommendations string
	)
	switch {
	case score >= 13:
		risk = RiskLow
		interpretation = fmt.Sprintf("Lesión cerebral leve (GCS %d)", score)
		recommendations = "Observación. Monitoreo neurológico rutinario."
	case score >= 9:
		risk = RiskModerate
		interpretation = fmt.Sprintf("Lesión cerebral moderada (GCS %d)", score)
		recommendations = "Hospitalización. Monitoreo neurológico frecuente. Considerar TC."
	default:
		risk = RiskSevere
		interpretation = fmt.Sprintf("Lesión cerebral severa (GCS %d)", score)
		recommendations = "UCI. Manejo de vía aérea. TC urgente. Monitoreo PIC."
	}

	return &Result{Score: float64(score), RiskLevel: risk, Interpretation: interpretation, Recommendations: recommendations}, nil
}

// CHA2DS2VAScInput holds the CHA2DS2-VASc criteria for stroke risk in
// atrial fibrillation.
type CHA2DS2VAScInput struct {
	CongestiveHeartFailure bool // 1 point
	Hypertension           bool // 1 point
	Age                    int  // >=75: 2 points, 65-74: 1 point
	Diabetes               bool // 1 point
	StrokeTIAHistory       bool // 2 points
	VascularDisease        bool // 1 point
	SexFemale              bool // 1 point
}

// CHA2DS2VASc scores annual stroke risk in atrial fibrillation. For scores
// >=3 the annual risk estimate is 3.2 + (score-3)*0.8 percent.
func CHA2DS2VASc(in CHA2DS2VAScInput) (*Result, error) {
	if err := validateRange(float64(in.Age), 0, 150, "Edad"); err != nil {
		return nil, err
	}

	score := 0
	if in.CongestiveHeartFailure {
		score++
	}
	if in.Hypertension {
		score++
	}
	if in.Age >= 75 {
		score += 2
	} else if in.Age >= 65 {
		score++
	}
	if in.Diabetes {
		score++
	}
	if in.StrokeTIAHistory {
		score += 2
	}
	if in.VascularDisease {
		score++
	}
	if in.SexFemale {
		score++
	}

	var (
		risk            RiskLevel
		interpretation  string
		recommendations string
	)
	switch {
	case score == 0:
		risk = RiskLow
		interpretation = fmt.Sprintf("Riesgo muy bajo de stroke (CHA2DS2-VASc %d). Riesgo anual: 0%%", score)
		recommendations = "No anticoagulación. Considerar aspirina."
	case score == 1:
		risk = RiskLow
		interpretation = fmt.Sprintf("Riesgo bajo de stroke (CHA2DS2-VASc %d). Riesgo anual: 1.3%%", score)
		recommendations = "Considerar anticoagulación oral o aspirina."
	case score == 2:
		risk = RiskModerate
		interpretation = fmt.Sprintf("Riesgo moderado de stroke (CHA2DS2-VASc %d). Riesgo anual: 2.2%%", score)
		recommendations = "Anticoagulación oral recomendada."
	default:
		risk = RiskHigh
		annualRisk := 3.2 + float64(score-3)*0.8
		interpretation = fmt.Sprintf("Riesgo alto de stroke (CHA2DS2-VASc %d). Riesgo anual: %.1f%%", score, annualRisk)
		recommendations = "Anticoagulación oral fuertemente recomendada."
	}

	return &Result{Score: float64(score), RiskLevel: risk, Interpretation: interpretation, Recommendations: recommendations}, nil
}

// APACHEIIInput holds the simplified APACHE II parameters.
type APACHEIIInput struct {
	Temperature          float64
	MeanArterialPressure float64
	HeartRate            int
	GlasgowComaScale     int
	Age                  int
	ChronicHealth        bool
}

// APACHEII computes the simplified APACHE II severity score. The vital-sign
// ladders are evaluated top-down, first match wins; the literal comparison
// order of the reference scale is preserved even where brackets overlap.
func APACHEII(in APACHEIIInput) (*Result, error) {
	if err := validateRange(float64(in.GlasgowComaScale), 3, 15, "Glasgow Coma Scale"); err != nil {
		return nil, err
	}
	if err := validateRange(float64(in.Age), 0, 150, "Edad"); err != nil {
		return nil, err
	}

	score := 0

	// Temperature (°C)
	switch {
	case in.Temperature >= 41 || in.Temperature <= 29.9:
		score += 4
	case in.Temperature >= 39 || in.Temperature <= 31.9:
		score += 3
	case in.Temperature >= 38.5 || in.Temperature <= 33.9:
		score += 1
	}

	// Mean arterial pressure (mmHg)
	switch {
	case in.MeanArterialPressure >= 160 || in.MeanArterialPressure <= 49:
		score += 4
	case in.MeanArterialPressure >= 130 || in.MeanArterialPressure <= 69:
		score += 2
	case in.MeanArterialPressure <= 109:
		score += 2
	}

	// Heart rate
	switch {
	case in.HeartRate >= 180 || in.HeartRate <= 39:
		score += 4
	case in.HeartRate >= 140 || in.HeartRate <= 54:
		score += 2
	case in.HeartRate >= 110 || in.HeartRate <= 69:
		score += 1
	}

	// Neurological: 15 - GCS
	score += 15 - in.GlasgowComaScale

	// Age bracket
	switch {
	case in.Age >= 75:
		score += 6
	case in.Age >= 65:
		score += 5
	case in.Age >= 55:
		score += 3
	case in.Age >= 45:
		score += 2
	}

	if in.ChronicHealth {
		score += 5
	}

	var (
		risk            RiskLevel
		interpretation  string
		recommendations string
	)
	switch {
	case score <= 4:
		risk = RiskLow
		interpretation = fmt.Sprintf("Riesgo bajo de mortalidad (APACHE II %d). Mortalidad estimada: <4%%", score)
		recommendations = "Paciente estable. Monitoreo rutinario."
	case score <= 14:
		risk = RiskModerate
		interpretation = fmt.Sprintf("Riesgo moderado de mortalidad (APACHE II %d). Mortalidad estimada: 8-15%%", score)
		recommendations = "Monitoreo cercano. Considerar cuidados intermedios."
	case score <= 24:
		risk = RiskHigh
		interpretation = fmt.Sprintf("Riesgo alto de mortalidad (APACHE II %d). Mortalidad estimada: 15-25%%", score)
		recommendations = "UCI recomendada. Soporte intensivo."
	default:
		risk = RiskSevere
		interpretation = fmt.Sprintf("Riesgo muy alto de mortalidad (APACHE II %d). Mortalidad estimada: >40%%", score)
		recommendations = "UCI. Soporte vital máximo. Considerar pronóstico."
	}

	return &Result{Score: float64(score), RiskLevel: risk, Interpretation: interpretation, Recommendations: recommendations}, nil
}

// NIHSSInput holds the fifteen items of the NIH Stroke Scale.
type NIHSSInput struct {
	Consciousness int // 0-3
	Orientation   int // 0-2
	Commands      int // 0-2
	Gaze          int // 0-2
	VisualFields  int // 0-3
	FacialPalsy   int // 0-3
	MotorArmLeft  int // 0-4
	MotorArmRight int // 0-4
	MotorLegLeft  int // 0-4
	MotorLegRight int // 0-4
	Ataxia        int // 0-2
	Sensory       int // 0-2
	Language      int // 0-3
	Dysarthria    int // 0-2
	Extinction    int // 0-2
}

// NIHSS computes the National Institutes of Health Stroke Scale.
func NIHSS(in NIHSSInput) (*Result, error) {
	items := []struct {
		value int
		max   float64
		name  string
	}{
		{in.Consciousness, 3, "Nivel de conciencia"},
		{in.Orientation, 2, "Orientación"},
		{in.Commands, 2, "Seguimiento de órdenes"},
		{in.Gaze, 2, "Movimientos oculares"},
		{in.VisualFields, 3, "Campos visuales"},
		{in.FacialPalsy, 3, "Parálisis facial"},
		{in.MotorArmLeft, 4, "Motor brazo izquierdo"},
		{in.MotorArmRight, 4, "Motor brazo derecho"},
		{in.MotorLegLeft, 4, "Motor pierna izquierda"},
		{in.MotorLegRight, 4, "Motor pierna derecha"},
		{in.Ataxia, 2, "Ataxia"},
		{in.Sensory, 2, "Sensitivo"},
		{in.Language, 3, "Lenguaje"},
		{in.Dysarthria, 2, "Disartria"},
		{in.Extinction, 2, "Extinción/inatención"},
	}

	score := 0
	for _, item := range items {
		if err := validateRange(float64(item.value), 0, item.max, item.name); err != nil {
			return nil, err
		}
		score += item.value
	}

	var (
		risk            RiskLevel
		interpretation  string
		recommendations string
	)
	switch {
	case score == 0:
		risk = RiskLow
		interpretation = fmt.Sprintf("Sin síntomas de stroke (NIHSS %d)", score)
		recommendations = "Paciente sin déficit neurológico detectable."
	case score <= 4:
		risk = RiskLow
		interpretation = fmt.Sprintf("Stroke menor (NIHSS %d)", score)
		recommendations = "Stroke leve. Considerar trombolisis según criterios."
	case score <= 15:
		risk = RiskModerate
		interpretation = fmt.Sprintf("Stroke moderado (NIHSS %d)", score)
		recommendations = "Stroke moderado. Candidato para trombolisis/trombectomía."
	case score <= 20:
		risk = RiskHigh
		interpretation = fmt.Sprintf("Stroke moderado-severo (NIHSS %d)", score)
		recommendations = "Stroke severo. Trombolisis/trombectomía urgente si es candidato."
	default:
		risk = RiskSevere
		interpretation = fmt.Sprintf("Stroke severo (NIHSS %d)", score)
		recommendations = "Stroke muy severo. Evaluar tratamiento agresivo vs. cuidados paliativos."
	}

	return &Result{Score: float64(score), RiskLevel: risk, Interpretation: interpretation, Recommendations: recommendations}, nil
}
