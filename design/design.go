// Package design builds wellbore completion architectures.
//
// Dispatch is on the trajectory tag: vertical wells get a single-stage
// cased-and-perforated design, horizontal wells a multistage design
// along the lateral, multi-lateral wells two independently staged
// branches behind a cemented junction. Every design populates the full
// uniform schema; fields that do not apply to a variant carry zero or
// none sentinels so batch statistics never branch on the variant.
//
// All engineering scalars come from the params set and are fail-fast:
// a missing key aborts before any design is produced.
package design

import (
	"fmt"
	"math"

	"github.com/stratalog-io/welldex/params"
	"github.com/stratalog-io/welldex/types"
)

// Engine derives wellbore designs from trajectories and completions.
type Engine struct {
	ps *params.Set
}

// NewEngine creates a design engine over the parameter set.
func NewEngine(ps *params.Set) *Engine {
	return &Engine{ps: ps}
}

// basePerforation reads the unscaled perforation specification.
func (e *Engine) basePerforation() (types.PerforationSpec, error) {
	density, err := e.ps.Require(params.KeyPerforationDensity)
	if err != nil {
		return types.PerforationSpec{}, err
	}
	diameter, err := e.ps.Require(params.KeyPerforationDiameter)
	if err != nil {
		return types.PerforationSpec{}, err
	}
	penetration, err := e.ps.Require(params.KeyPerforationPenetration)
	if err != nil {
		return types.PerforationSpec{}, err
	}
	return types.PerforationSpec{Density: density, Diameter: diameter, Penetration: penetration}, nil
}

// stageBranch computes the stage count and actual stage length for one
// lateral branch: the configured stage length is rounded up to a whole
// stage count, then the actual length is recomputed so the stages
// exactly tile the lateral.
func stageBranch(lateral, configuredStageLength float64) (int, float64) {
	count := int(math.Ceil(lateral / configuredStageLength))
	if count < 1 {
		count = 1
	}
	return count, lateral / float64(count)
}

// Design derives the completion architecture for one well.
func (e *Engine) Design(well *types.Well, completion *types.WellCompletion) (*types.WellboreDesign, error) {
	perf, err := e.basePerforation()
	if err != nil {
		return nil, err
	}

	switch well.Trajectory.Kind {
	case types.TrajectoryVertical:
		return e.designVertical(well, completion, perf)
	case types.TrajectoryHorizontal:
		return e.designHorizontal(well, perf)
	case types.TrajectoryMultiLateral:
		return e.designMultiLateral(well, perf)
	default:
		return nil, fmt.Errorf("well %s: unknown trajectory kind %q", well.ID, well.Trajectory.Kind)
	}
}

func (e *Engine) designVertical(well *types.Well, completion *types.WellCompletion, perf types.PerforationSpec) (*types.WellboreDesign, error) {
	perLayer, err := e.ps.Require(params.KeyPerLayerCompletionLength)
	if err != nil {
		return nil, err
	}

	return &types.WellboreDesign{
		WellID:           well.ID,
		Type:             types.CompletionVertical,
		StageCount:       1,
		CompletionLength: float64(len(completion.Intervals)) * perLayer,
		Perforation:      perf,
		SandControl:      types.SandControlGravelPack,
		Junction:         types.JunctionNone,
	}, nil
}

func (e *Engine) designHorizontal(well *types.Well, perf types.PerforationSpec) (*types.WellboreDesign, error) {
	stageLength, err := e.ps.Require(params.KeyStageLengthHorizontal)
	if err != nil {
		return nil, err
	}
	densityFactor, err := e.ps.Require(params.KeyHorizontalDensityFactor)
	if err != nil {
		return nil, err
	}
	diameterFactor, err := e.ps.Require(params.KeyHorizontalDiameterFactor)
	if err != nil {
		return nil, err
	}

	lateral := well.Trajectory.Lateral1
	stages, actual := stageBranch(lateral, stageLength)

	perf.Density *= densityFactor
	perf.Diameter *= diameterFactor

	return &types.WellboreDesign{
		WellID:           well.ID,
		Type:             types.CompletionHorizontal,
		StageCount:       stages,
		Lateral1Stages:   stages,
		StageLength:      actual,
		Lateral1Length:   lateral,
		CompletionLength: lateral,
		Perforation:      perf,
		SandControl:      types.SandControlPremiumScreens,
		Junction:         types.JunctionNone,
	}, nil
}

func (e *Engine) designMultiLateral(well *types.Well, perf types.PerforationSpec) (*types.WellboreDesign, error) {
	stageLength, err := e.ps.Require(params.KeyStageLengthMultiLateral)
	if err != nil {
		return nil, err
	}
	densityFactor, err := e.ps.Require(params.KeyMultiLateralDensityFactor)
	if err != nil {
		return nil, err
	}
	diameterFactor, err := e.ps.Require(params.KeyMultiLateralDiameterFactor)
	if err != nil {
		return nil, err
	}

	lateral1 := well.Trajectory.Lateral1
	lateral2 := well.Trajectory.Lateral2
	stages1, _ := stageBranch(lateral1, stageLength)
	stages2, _ := stageBranch(lateral2, stageLength)
	total := stages1 + stages2

	perf.Density *= densityFactor
	perf.Diameter *= diameterFactor

	return &types.WellboreDesign{
		WellID:         well.ID,
		Type:           types.CompletionMultiLateral,
		StageCount:     total,
		Lateral1Stages: stages1,
		Lateral2Stages: stages2,
		// Branches are staged independently; the reported stage length
		// is the overall average across both laterals.
		StageLength:      (lateral1 + lateral2) / float64(total),
		Lateral1Length:   lateral1,
		Lateral2Length:   lateral2,
		CompletionLength: lateral1 + lateral2,
		Perforation:      perf,
		SandControl:      types.SandControlExpandableScreens,
		Junction:         types.JunctionLevel4Cemented,
	}, nil
}
