package netlist

import (
	"encoding/json"
	"fmt"

	"github.com/sarchlab/gatesim/bitvec"
	"github.com/sarchlab/gatesim/internal/gatesimerr"
)

// jsonDoc is the top-level shape of a netlist document: modules.<name>.
type jsonDoc struct {
	Modules map[string]jsonModule `json:"modules"`
}

type jsonModule struct {
	Ports    map[string]jsonPort       `json:"ports"`
	Cells    map[string]jsonCell       `json:"cells"`
	Netnames map[string]json.RawMessage `json:"netnames,omitempty"`
}

type jsonPort struct {
	Direction string   `json:"direction"`
	Bits      []rawBit `json:"bits"`
}

type jsonCell struct {
	Type           string              `json:"type"`
	PortDirections map[string]string   `json:"port_directions"`
	Connections    map[string][]rawBit `json:"connections"`
}

// rawBit is one entry of a "bits"/"connections" array: either an integer
// net id >= 2, or the string literal "0"/"1" naming a constant. Anything
// else is a BadConstantLiteral.
type rawBit struct {
	isConst  bool
	constVal bitvec.Bit
	id       int
}

func (b *rawBit) UnmarshalJSON(data []byte) error {
	var asInt int
	if err := json.Unmarshal(data, &asInt); err == nil {
		if asInt >= 2 {
			b.id = asInt
			return nil
		}
		return gatesimerr.Newf(gatesimerr.BadConstantLiteral, fmt.Sprintf("%d", asInt),
			"integer bit id must be >= 2; 0 and 1 are reserved and must be written as the string literals \"0\"/\"1\"")
	}

	var asStr string
	if err := json.Unmarshal(data, &asStr); err == nil {
		switch asStr {
		case "0":
			b.isConst = true
			b.constVal = bitvec.Zero
			return nil
		case "1":
			b.isConst = true
			b.constVal = bitvec.One
			return nil
		default:
			return gatesimerr.New(gatesimerr.BadConstantLiteral, asStr, "constant literal must be \"0\" or \"1\"")
		}
	}

	return gatesimerr.New(gatesimerr.NetlistParse, string(data), "bit entry must be an integer or a string literal")
}
