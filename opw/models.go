package opw

import (
	// for model json files
	_ "embed"
	"encoding/json"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

//go:embed kuka_kr340_r3300.json
var kukaKR340R3300JSON []byte

// parametersConfig is the on-disk layout of a model description.
type parametersConfig struct {
	Name       string `json:"name"`
	GeometryMM struct {
		A1 float64 `json:"a1"`
		A2 float64 `json:"a2"`
		B  float64 `json:"b"`
		C1 float64 `json:"c1"`
		C2 float64 `json:"c2"`
		C3 float64 `json:"c3"`
		C4 float64 `json:"c4"`
	} `json:"geometry_mm"`
	BaseRadiusMM float64 `json:"base_radius_mm"`
	ToolOffsetMM struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	} `json:"tool_offset_mm"`
	Joints []struct {
		Sign   int     `json:"sign"`
		Offset float64 `json:"offset"`
		Limit  Limit   `json:"limit"`
	} `json:"joints"`
}

// UnmarshalParametersJSON parses a model description in the JSON layout used by
// the embedded presets and returns the robot name and its parameters.
func UnmarshalParametersJSON(data []byte) (string, Parameters, error) {
	var cfg parametersConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return "", Parameters{}, errors.Wrap(err, "failed to parse model parameters")
	}
	if len(cfg.Joints) != NumJoints {
		return "", Parameters{}, errors.Errorf("model %q must describe %d joints, got %d", cfg.Name, NumJoints, len(cfg.Joints))
	}
	p := Parameters{
		A1:         cfg.GeometryMM.A1,
		A2:         cfg.GeometryMM.A2,
		B:          cfg.GeometryMM.B,
		C1:         cfg.GeometryMM.C1,
		C2:         cfg.GeometryMM.C2,
		C3:         cfg.GeometryMM.C3,
		C4:         cfg.GeometryMM.C4,
		BaseRadius: cfg.BaseRadiusMM,
		ToolOffset: r3.Vector{X: cfg.ToolOffsetMM.X, Y: cfg.ToolOffsetMM.Y, Z: cfg.ToolOffsetMM.Z},
	}
	for i, j := range cfg.Joints {
		p.Joints[i] = Joint{Sign: j.Sign, Offset: j.Offset, Limit: j.Limit}
	}
	return cfg.Name, p, nil
}

// NewKukaKR340R3300 returns a solver for the KUKA KR 340 R3300, the machine the
// printing cell is built around.
func NewKukaKR340R3300(logger golog.Logger) (*Model, error) {
	name, p, err := UnmarshalParametersJSON(kukaKR340R3300JSON)
	if err != nil {
		return nil, err
	}
	return NewModel(name, p, logger)
}
