package algorithms

import (
	"context"

	"github.com/rs/zerolog/log"
)

func strptr(s string) *string { return &s }
func intptr(i int) *int       { return &i }

// Seed loads a sample chest pain decision tree when the algorithms table is
// empty. Safe to call repeatedly.
func (s *Service) Seed(ctx context.Context, createdByID int64) error {
	count, err := s.repo.CountAlgorithms(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Info().Msg("Algorithms already seeded, skipping")
		return nil
	}

	in := CreateInput{
		Title:         "Manejo de Dolor Torácico",
		Description:   strptr("Algoritmo para evaluación y manejo inicial del dolor torácico en urgencias"),
		Category:      strptr("Cardiología"),
		Specialty:     strptr("Medicina de Emergencias"),
		AlgorithmType: TypeDecisionTree,
		Tags:          strptr(`["dolor torácico", "emergencia", "cardiología"]`),
		IsPublished:   true,
		IsFeatured:    true,
		Nodes: []NodeInput{
			{
				NodeType:   NodeTypeStart,
				Title:      "Paciente con dolor torácico",
				Content:    strptr("Evaluación inicial del paciente con dolor torácico"),
				OrderIndex: 1,
				PositionX:  100, PositionY: 50,
				Color: strptr("#4CAF50"),
				Icon:  strptr("start"),
			},
			{
				NodeType:   NodeTypeDecision,
				Title:      "¿Signos de alarma?",
				Content:    strptr("Evaluar signos vitales y síntomas de alarma"),
				Question:   strptr("¿Presenta el paciente signos de alarma como hipotensión, disnea severa, sudoración profusa?"),
				OrderIndex: 2,
				PositionX:  100, PositionY: 150,
				Color: strptr("#FF9800"),
				Icon:  strptr("help"),
			},
			{
				NodeType:          NodeTypeAction,
				Title:             "Manejo urgente",
				Content:           strptr("Estabilización inmediata del paciente"),
				ActionDescription: strptr("Oxígeno, acceso venoso, monitoreo cardíaco, ECG urgente"),
				OrderIndex:        3,
				PositionX:         50, PositionY: 250,
				Color: strptr("#F44336"),
				Icon:  strptr("emergency"),
			},
			{
				NodeType:          NodeTypeAction,
				Title:             "Evaluación sistemática",
				Content:           strptr("Evaluación completa del dolor torácico"),
				ActionDescription: strptr("Historia clínica detallada, ECG, radiografía de tórax"),
				OrderIndex:        4,
				PositionX:         150, PositionY: 250,
				Color: strptr("#2196F3"),
				Icon:  strptr("assessment"),
			},
		},
		Edges: []EdgeInput{
			{FromIndex: 0, ToIndex: 1, Label: strptr("Iniciar evaluación"), OrderIndex: 1},
			{
				FromIndex: 1, ToIndex: 2,
				Label:          strptr("Sí"),
				ConditionType:  strptr("equals"),
				ConditionValue: strptr("true"),
				Color:          strptr("#F44336"),
				OrderIndex:     2,
			},
			{
				FromIndex: 1, ToIndex: 3,
				Label:          strptr("No"),
				ConditionType:  strptr("equals"),
				ConditionValue: strptr("false"),
				Color:          strptr("#4CAF50"),
				OrderIndex:     3,
			},
		},
		StartNodeIndex: intptr(0),
	}

	g, err := s.CreateWithGraph(ctx, in, createdByID)
	if err != nil {
		return err
	}
	log.Info().
		Str("title", g.Algorithm.Title).
		Int("nodes", len(g.Nodes)).
		Int("edges", len(g.Edges)).
		Msg("Sample algorithm seeded")
	return nil
}
