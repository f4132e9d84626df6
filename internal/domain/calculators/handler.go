package calculators

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/crtormo/resicentral/internal/platform/auth"
)

// Handler exposes the scoring engine over HTTP. It holds no state: every
// endpoint binds a request, calls the matching pure function and returns
// the result.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "physician", "resident"))
	g.GET("/calculators", h.ListCalculators)
	g.POST("/calculators/curb65", h.CalculateCURB65)
	g.POST("/calculators/wells-pe", h.CalculateWellsPE)
	g.POST("/calculators/glasgow-coma", h.CalculateGlasgowComa)
	g.POST("/calculators/chads2-vasc", h.CalculateCHA2DS2VASc)
	g.POST("/calculators/apache-ii", h.CalculateAPACHEII)
	g.POST("/calculators/nihss", h.CalculateNIHSS)
}

func (h *Handler) ListCalculators(c echo.Context) error {
	return c.JSON(http.StatusOK, Directory())
}

// bindRequest decodes the request body, translating JSON type errors into
// the scoring engine's TypeMismatchError so callers can tell a wrong-typed
// field from an out-of-range one.
func bindRequest(c echo.Context, v interface{}) error {
	if err := json.NewDecoder(c.Request().Body).Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &TypeMismatchError{Field: typeErr.Field, Expected: typeErr.Type.Kind().String()}
		}
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

// missing reports the first nil entry of the required fields, if any.
func missing(fields map[string]interface{}, order []string) error {
	for _, name := range order {
		v, ok := fields[name]
		if !ok {
			continue
		}
		switch p := v.(type) {
		case *bool:
			if p == nil {
				return fmt.Errorf("%s es requerido", name)
			}
		case *int:
			if p == nil {
				return fmt.Errorf("%s es requerido", name)
			}
		case *float64:
			if p == nil {
				return fmt.Errorf("%s es requerido", name)
			}
		}
	}
	return nil
}

func calcError(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

type curb65Request struct {
	Confusion              *bool    `json:"confusion"`
	Urea                   *float64 `json:"urea"`
	RespiratoryRate        *int     `json:"respiratory_rate"`
	BloodPressureSystolic  *int     `json:"blood_pressure_systolic"`
	BloodPressureDiastolic *int     `json:"blood_pressure_diastolic"`
	Age                    *int     `json:"age"`
}

func (h *Handler) CalculateCURB65(c echo.Context) error {
	var req curb65Request
	if err := bindRequest(c, &req); err != nil {
		return calcError(err)
	}
	if err := missing(map[string]interface{}{
		"confusion":                req.Confusion,
		"urea":                     req.Urea,
		"respiratory_rate":         req.RespiratoryRate,
		"blood_pressure_systolic":  req.BloodPressureSystolic,
		"blood_pressure_diastolic": req.BloodPressureDiastolic,
		"age":                      req.Age,
	}, []string{"confusion", "urea", "respiratory_rate", "blood_pressure_systolic", "blood_pressure_diastolic", "age"}); err != nil {
		return calcError(err)
	}

	result, err := CURB65(*req.Confusion, *req.Urea, *req.RespiratoryRate,
		*req.BloodPressureSystolic, *req.BloodPressureDiastolic, *req.Age)
	if err != nil {
		return calcError(err)
	}
	return c.JSON(http.StatusOK, result)
}

type wellsPERequest struct {
	ClinicalSignsDVT      *bool `json:"clinical_signs_dvt"`
	PELikely              *bool `json:"pe_likely"`
	HeartRateOver100      *bool `json:"heart_rate_over_100"`
	ImmobilizationSurgery *bool `json:"immobilization_surgery"`
	PreviousPEDVT         *bool `json:"previous_pe_dvt"`
	Hemoptysis            *bool `json:"hemoptysis"`
	Malignancy            *bool `json:"malignancy"`
}

func (h *Handler) CalculateWellsPE(c echo.Context) error {
	var req wellsPERequest
	if err := bindRequest(c, &req); err != nil {
		return calcError(err)
	}
	if err := missing(map[string]interface{}{
		"clinical_signs_dvt":     req.ClinicalSignsDVT,
		"pe_likely":              req.PELikely,
		"heart_rate_over_100":    req.HeartRateOver100,
		"immobilization_surgery": req.ImmobilizationSurgery,
		"previous_pe_dvt":        req.PreviousPEDVT,
		"hemoptysis":             req.Hemoptysis,
		"malignancy":             req.Malignancy,
	}, []string{"clinical_signs_dvt", "pe_likely", "heart_rate_over_100", "immobilization_surgery", "previous_pe_dvt", "hemoptysis", "malignancy"}); err != nil {
		return calcError(err)
	}

	result, err := WellsPE(WellsPEInput{
		ClinicalSignsDVT:      *req.ClinicalSignsDVT,
		PELikely:              *req.PELikely,
		HeartRateOver100:      *req.HeartRateOver100,
		ImmobilizationSurgery: *req.ImmobilizationSurgery,
		PreviousPEDVT:         *req.PreviousPEDVT,
		Hemoptysis:            *req.Hemoptysis,
		Malignancy:            *req.Malignancy,
	})
	if err != nil {
		return calcError(err)
	}
	return c.JSON(http.StatusOK, result)
}

type glasgowComaRequest struct {
	EyeOpening     *int `json:"eye_opening"`
	VerbalResponse *int `json:"verbal_response"`
	MotorResponse  *int `json:"motor_response"`
}

func (h *Handler) CalculateGlasgowComa(c echo.Context) error {
	var req glasgowComaRequest
	if err := bindRequest(c, &req); err != nil {
		return calcError(err)
	}
	if err := missing(map[string]interface{}{
		"eye_opening":     req.EyeOpening,
		"verbal_response": req.VerbalResponse,
		"motor_response":  req.MotorResponse,
	}, []string{"eye_opening", "verbal_response", "motor_response"}); err != nil {
		return calcError(err)
	}

	result, err := GlasgowComaScale(*req.EyeOpening, *req.VerbalResponse, *req.MotorResponse)
	if err != nil {
		return calcError(err)
	}
	return c.JSON(http.StatusOK, result)
}

type chads2VAScRequest struct {
	CongestiveHeartFailure *bool `json:"congestive_heart_failure"`
	Hypertension           *bool `json:"hypertension"`
	Age                    *int  `json:"age"`
	Diabetes               *bool `json:"diabetes"`
	StrokeTIAHistory       *bool `json:"stroke_tia_history"`
	VascularDisease        *bool `json:"vascular_disease"`
	SexFemale              *bool `json:"sex_female"`
}

func (h *Handler) CalculateCHA2DS2VASc(c echo.Context) error {
	var req chads2VAScRequest
	if err := bindRequest(c, &req); err != nil {
		return calcError(err)
	}
	if err := missing(map[string]interface{}{
		"congestive_heart_failure": req.CongestiveHeartFailure,
		"hypertension":             req.Hypertension,
		"age":                      req.Age,
		"diabetes":                 req.Diabetes,
		"stroke_tia_history":       req.StrokeTIAHistory,
		"vascular_disease":         req.VascularDisease,
		"sex_female":               req.SexFemale,
	}, []string{"congestive_heart_failure", "hypertension", "age", "diabetes", "stroke_tia_history", "vascular_disease", "sex_female"}); err != nil {
		return calcError(err)
	}

	result, err := CHA2DS2VASc(CHA2DS2VAScInput{
		CongestiveHeartFailure: *req.CongestiveHeartFailure,
		Hypertension:           *req.Hypertension,
		Age:                    *req.Age,
		Diabetes:               *req.Diabetes,
		StrokeTIAHistory:       *req.StrokeTIAHistory,
		VascularDisease:        *req.VascularDisease,
		SexFemale:              *req.SexFemale,
	})
	if err != nil {
		return calcError(err)
	}
	return c.JSON(http.StatusOK, result)
}

type apacheIIRequest struct {
	Temperature          *float64 `json:"temperature"`
	MeanArterialPressure *float64 `json:"mean_arterial_pressure"`
	HeartRate            *int     `json:"heart_rate"`
	GlasgowComaScale     *int     `json:"glasgow_coma_scale"`
	Age                  *int     `json:"age"`
	ChronicHealth        *bool    `json:"chronic_health"`
}

func (h *Handler) CalculateAPACHEII(c echo.Context) error {
	var req apacheIIRequest
	if err := bindRequest(c, &req); err != nil {
		return calcError(err)
	}
	if err := missing(map[string]interface{}{
		"temperature":            req.Temperature,
		"mean_arterial_pressure": req.MeanArterialPressure,
		"heart_rate":             req.HeartRate,
		"glasgow_coma_scale":     req.GlasgowComaScale,
		"age":                    req.Age,
		"chronic_health":         req.ChronicHealth,
	}, []string{"temperature", "mean_arterial_pressure", "heart_rate", "glasgow_coma_scale", "age", "chronic_health"}); err != nil {
		return calcError(err)
	}

	result, err := APACHEII(APACHEIIInput{
		Temperature:          *req.Temperature,
		MeanArterialPressure: *req.MeanArterialPressure,
		HeartRate:            *req.HeartRate,
		GlasgowComaScale:     *req.GlasgowComaScale,
		Age:                  *req.Age,
		ChronicHealth:        *req.ChronicHealth,
	})
	if err != nil {
		return calcError(err)
	}
	return c.JSON(http.StatusOK, result)
}

type nihssRequest struct {
	Consciousness *int `json:"consciousness"`
	Orientation   *int `json:"orientation"`
	Commands      *int `json:"commands"`
	Gaze          *int `json:"gaze"`
	VisualFields  *int `json:"visual_fields"`
	FacialPalsy   *int `json:"facial_palsy"`
	MotorArmLeft  *int `json:"motor_arm_left"`
	MotorArmRight *int `json:"motor_arm_right"`
	MotorLegLeft  *int `json:"motor_leg_left"`
	MotorLegRight *int `json:"motor_leg_right"`
	Ataxia        *int `json:"ataxia"`
	Sensory       *int `json:"sensory"`
	Language      *int `json:"language"`
	Dysarthria    *int `json:"dysarthria"`
	Extinction    *int `json:"extinction"`
}

func (h *Handler) CalculateNIHSS(c echo.Context) error {
	var req nihssRequest
	if err := bindRequest(c, &req); err != nil {
		return calcError(err)
	}
	fields := map[string]interface{}{
		"consciousness": req.Consciousness, "orientation": req.Orientation,
		"commands": req.Commands, "gaze": req.Gaze,
		"visual_fields": req.VisualFields, "facial_palsy": req.FacialPalsy,
		"motor_arm_left": req.MotorArmLeft, "motor_arm_right": req.MotorArmRight,
		"motor_leg_left": req.MotorLegLeft, "motor_leg_right": req.MotorLegRight,
		"ataxia": req.Ataxia, "sensory": req.Sensory,
		"language": req.Language, "dysarthria": req.Dysarthria,
		"extinction": req.Extinction,
	}
	order := []string{"consciousness", "orientation", "commands", "gaze",
		"visual_fields", "facial_palsy", "motor_arm_left", "motor_arm_right",
		"motor_leg_left", "motor_leg_right", "ataxia", "sensory", "language",
		"dysarthria", "extinction"}
	if err := missing(fields, order); err != nil {
		return calcError(err)
	}

	result, err := NIHSS(NIHSSInput{
		Consciousness: *req.Consciousness,
		Orientation:   *req.Orientation,
		Commands:      *req.Commands,
		Gaze:          *req.Gaze,
		VisualFields:  *req.VisualFields,
		FacialPalsy:   *req.FacialPalsy,
		MotorArmLeft:  *req.MotorArmLeft,
		MotorArmRight: *req.MotorArmRight,
		MotorLegLeft:  *req.MotorLegLeft,
		MotorLegRight: *req.MotorLegRight,
		Ataxia:        *req.Ataxia,
		Sensory:       *req.Sensory,
		Language:      *req.Language,
		Dysarthria:    *req.Dysarthria,
		Extinction:    *req.Extinction,
	})
	if err != nil {
		return calcError(err)
	}
	return c.JSON(http.StatusOK, result)
}
