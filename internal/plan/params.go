package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Indices into Params.
const (
	ParamHold        = iota // hold time, seconds
	ParamAcceptance         // acceptance radius, metres
	ParamPassThrough        // pass-through radius, metres
	ParamYaw                // desired yaw, NaN = unchanged
	ParamLat
	ParamLon
	ParamAlt
	numParams
)

// Params are the seven MAVLink command parameters. NaN (or Inf) slots are
// written as JSON null, which is how QGroundControl stores "unset".
type Params [numParams]float64

func (p Params) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('[')
	for i, v := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			b.WriteString("null")
			continue
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	b.WriteByte(']')
	return b.Bytes(), nil
}

func (p *Params) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != numParams {
		return fmt.Errorf("plan: params has %d entries, want %d", len(raw), numParams)
	}
	for i, v := range raw {
		if v == nil {
			p[i] = math.NaN()
			continue
		}
		p[i] = *v
	}
	return nil
}
