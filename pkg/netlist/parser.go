// Package netlist implements the line-oriented netlist text format: a
// lexer that dispatches on a leading character to an element constructor,
// and the structural-error surface (ErrInvalidElement, ErrInvalidMethod)
// raised when a line's leading character, arity, or directive tag does not
// match any known variant.
package netlist

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nrogoz/mnasim/pkg/circuit"
	"github.com/nrogoz/mnasim/pkg/element"
	"github.com/nrogoz/mnasim/pkg/simerr"
	"github.com/nrogoz/mnasim/pkg/system"
)

// TranDirective carries a parsed ".TRAN" line.
type TranDirective struct {
	End        float64
	Step       float64
	Method     system.Method
	Multiplier int
	UseIC      bool
}

// ACDirective carries a parsed ".AC" line. Scale is stored for round-trip
// fidelity but the driver always samples logarithmically, per spec.md
// §9's note that the known source reads the scale token but never
// dispatches it.
type ACDirective struct {
	Scale          string
	StepsPerDecade int
	FStart, FEnd   float64
}

// Directive is whichever simulation directive terminated the netlist.
type Directive struct {
	IsAC bool
	Tran TranDirective
	AC   ACDirective
}

var unitMap = map[string]float64{
	"T":   1e12,
	"G":   1e9,
	"meg": 1e6,
	"K":   1e3,
	"k":   1e3,
	"m":   1e-3,
	"u":   1e-6,
	"n":   1e-9,
	"p":   1e-12,
	"f":   1e-15,
}

var valueRe = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)(meg|[TGMKkmunpf])?s?$`)

// ParseValue parses a unit-suffixed numeric field ("1k" -> 1000); the
// number may carry an exponent ("10e-3").
func ParseValue(s string) (float64, error) {
	m := valueRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("%w: invalid value %q", simerr.ErrInvalidElement, s)
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, err
	}
	if m[2] != "" {
		num *= unitMap[m[2]]
	}
	return num, nil
}

// Parse reads a complete netlist: a first line, element and comment lines,
// and a terminal simulation directive. The first line (a node count or a
// title) is kept verbatim as the circuit's name and is not interpreted;
// nodes are numbered as element lines first mention them.
func Parse(input string) (*circuit.Circuit, *Directive, error) {
	scanner := bufio.NewScanner(strings.NewReader(input))

	var title string
	if scanner.Scan() {
		title = strings.TrimSpace(scanner.Text())
	}

	c := circuit.New(title)
	models := make(map[string]*element.ModelParam)
	var directive *Directive

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "*") {
			continue
		}

		if strings.HasPrefix(strings.ToUpper(line), "MODEL ") || strings.HasPrefix(strings.ToUpper(line), ".MODEL") {
			name, mp, err := parseModel(line)
			if err != nil {
				return nil, nil, err
			}
			models[name] = mp
			continue
		}

		if strings.HasPrefix(line, ".") {
			d, err := parseDirective(line)
			if err != nil {
				return nil, nil, err
			}
			directive = d
			continue
		}

		if err := parseElementLine(c, line, models); err != nil {
			return nil, nil, err
		}
	}

	if directive == nil {
		return nil, nil, fmt.Errorf("%w: netlist has no terminating simulation directive", simerr.ErrInvalidElement)
	}

	return c, directive, scanner.Err()
}

func parseDirective(line string) (*Directive, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty directive", simerr.ErrInvalidElement)
	}

	switch strings.ToUpper(fields[0]) {
	case ".TRAN":
		if len(fields) < 4 {
			return nil, fmt.Errorf("%w: .TRAN requires end, step, method, multiplier", simerr.ErrInvalidElement)
		}
		end, err := ParseValue(fields[1])
		if err != nil {
			return nil, err
		}
		step, err := ParseValue(fields[2])
		if err != nil {
			return nil, err
		}
		var method system.Method
		switch strings.ToUpper(fields[3]) {
		case "BE":
			method = system.BE
		case "TR":
			method = system.TR
		case "FE":
			method = system.FE
		default:
			return nil, fmt.Errorf("%w: unrecognized integration method %q", simerr.ErrInvalidMethod, fields[3])
		}

		mult := 1
		useIC := false
		for _, f := range fields[4:] {
			if strings.EqualFold(f, "UIC") {
				useIC = true
				continue
			}
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid internal multiplier %q", simerr.ErrInvalidElement, f)
			}
			mult = n
		}

		return &Directive{Tran: TranDirective{End: end, Step: step, Method: method, Multiplier: mult, UseIC: useIC}}, nil

	case ".AC":
		if len(fields) < 5 {
			return nil, fmt.Errorf("%w: .AC requires scale, steps, fstart, fstop", simerr.ErrInvalidElement)
		}
		scale := strings.ToUpper(fields[1])
		if scale != "LIN" && scale != "OCT" && scale != "DEC" {
			return nil, fmt.Errorf("%w: unrecognized AC scale %q", simerr.ErrInvalidMethod, fields[1])
		}
		steps, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid steps-per-decade %q", simerr.ErrInvalidElement, fields[2])
		}
		fStart, err := ParseValue(fields[3])
		if err != nil {
			return nil, err
		}
		fStop, err := ParseValue(fields[4])
		if err != nil {
			return nil, err
		}
		return &Directive{IsAC: true, AC: ACDirective{Scale: scale, StepsPerDecade: steps, FStart: fStart, FEnd: fStop}}, nil

	default:
		return nil, fmt.Errorf("%w: unsupported directive %q", simerr.ErrInvalidElement, fields[0])
	}
}

func parseModel(line string) (string, *element.ModelParam, error) {
	fields := strings.Fields(strings.TrimPrefix(line, "."))
	if len(fields) < 2 {
		return "", nil, fmt.Errorf("%w: invalid .MODEL line", simerr.ErrInvalidElement)
	}
	// fields[0] == "MODEL"
	name, typ := fields[1], ""
	if len(fields) > 2 {
		typ = fields[2]
	}
	mp := &element.ModelParam{Name: name, Type: typ, Params: make(map[string]float64)}
	for _, tok := range fields[3:] {
		kv := strings.SplitN(tok, "=", 2)
		if len(kv) != 2 {
			continue
		}
		v, err := ParseValue(kv[1])
		if err == nil {
			mp.Params[strings.ToUpper(kv[0])] = v
		}
	}
	return name, mp, nil
}

// trailingIC extracts and strips an optional "IC=<v>" token, reporting
// whether it was present and its parsed value.
func trailingIC(fields []string) ([]string, float64, bool, error) {
	if len(fields) == 0 {
		return fields, 0, false, nil
	}
	last := fields[len(fields)-1]
	if !strings.HasPrefix(strings.ToUpper(last), "IC=") {
		return fields, 0, false, nil
	}
	v, err := ParseValue(last[3:])
	if err != nil {
		return nil, 0, false, err
	}
	return fields[:len(fields)-1], v, true, nil
}

func parseElementLine(c *circuit.Circuit, line string, models map[string]*element.ModelParam) error {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return fmt.Errorf("%w: element line too short: %q", simerr.ErrInvalidElement, line)
	}
	name := fields[0]
	lead := name[0:1]

	switch lead {
	case "R":
		fields, _, _, err := trailingIC(fields)
		if err != nil {
			return err
		}
		if len(fields) != 4 {
			return fmt.Errorf("%w: resistor %s requires 2 nodes and a value", simerr.ErrInvalidElement, name)
		}
		r, err := ParseValue(fields[3])
		if err != nil {
			return err
		}
		c.Add(element.NewResistor(name, c.Node(fields[1]), c.Node(fields[2]), r))
		return nil

	case "C":
		rest, ic, _, err := trailingIC(fields)
		if err != nil {
			return err
		}
		if len(rest) != 4 {
			return fmt.Errorf("%w: capacitor %s requires 2 nodes and a value", simerr.ErrInvalidElement, name)
		}
		cap, err := ParseValue(rest[3])
		if err != nil {
			return err
		}
		c.Add(element.NewCapacitor(name, c.Node(rest[1]), c.Node(rest[2]), cap, ic))
		return nil

	case "L":
		rest, ic, _, err := trailingIC(fields)
		if err != nil {
			return err
		}
		if len(rest) != 4 {
			return fmt.Errorf("%w: inductor %s requires 2 nodes and a value", simerr.ErrInvalidElement, name)
		}
		l, err := ParseValue(rest[3])
		if err != nil {
			return err
		}
		c.Add(element.NewInductor(name, c.Node(rest[1]), c.Node(rest[2]), l, ic))
		return nil

	case "N":
		if len(fields) != 11 {
			return fmt.Errorf("%w: PWL resistor %s requires 2 nodes and 4 (v,i) breakpoints", simerr.ErrInvalidElement, name)
		}
		vals := make([]float64, 8)
		for i := 0; i < 8; i++ {
			v, err := ParseValue(fields[3+i])
			if err != nil {
				return err
			}
			vals[i] = v
		}
		c.Add(element.NewPWLResistor(name, c.Node(fields[1]), c.Node(fields[2]),
			vals[0], vals[1], vals[2], vals[3], vals[4], vals[5], vals[6], vals[7]))
		return nil

	case "O":
		if len(fields) != 4 {
			return fmt.Errorf("%w: op-amp %s requires v+, v-, vout", simerr.ErrInvalidElement, name)
		}
		c.Add(element.NewOpAmp(name, c.Node(fields[1]), c.Node(fields[2]), c.Node(fields[3])))
		return nil

	case "E":
		if len(fields) != 6 {
			return fmt.Errorf("%w: VCVS %s requires out(p,q), control(r,s), gain", simerr.ErrInvalidElement, name)
		}
		av, err := ParseValue(fields[5])
		if err != nil {
			return err
		}
		c.Add(element.NewVCVS(name, c.Node(fields[1]), c.Node(fields[2]), c.Node(fields[3]), c.Node(fields[4]), av))
		return nil

	case "F":
		if len(fields) != 6 {
			return fmt.Errorf("%w: CCCS %s requires out(p,q), control(r,s), gain", simerr.ErrInvalidElement, name)
		}
		ai, err := ParseValue(fields[5])
		if err != nil {
			return err
		}
		c.Add(element.NewCCCS(name, c.Node(fields[1]), c.Node(fields[2]), c.Node(fields[3]), c.Node(fields[4]), ai))
		return nil

	case "G":
		if len(fields) != 6 {
			return fmt.Errorf("%w: VCCS %s requires out(p,q), control(r,s), gm", simerr.ErrInvalidElement, name)
		}
		gm, err := ParseValue(fields[5])
		if err != nil {
			return err
		}
		c.Add(element.NewVCCS(name, c.Node(fields[1]), c.Node(fields[2]), c.Node(fields[3]), c.Node(fields[4]), gm))
		return nil

	case "H":
		if len(fields) != 6 {
			return fmt.Errorf("%w: CCVS %s requires out(p,q), control(r,s), rm", simerr.ErrInvalidElement, name)
		}
		rm, err := ParseValue(fields[5])
		if err != nil {
			return err
		}
		c.Add(element.NewCCVS(name, c.Node(fields[1]), c.Node(fields[2]), c.Node(fields[3]), c.Node(fields[4]), rm))
		return nil

	case "V":
		return parseSource(c, fields, true)
	case "I":
		return parseSource(c, fields, false)

	case "D":
		rest, _, _, err := trailingIC(fields)
		if err != nil {
			return err
		}
		if len(rest) < 3 {
			return fmt.Errorf("%w: diode %s requires 2 nodes", simerr.ErrInvalidElement, name)
		}
		is, n := 1e-14, 1.0
		if len(rest) > 3 {
			if mp, ok := models[rest[3]]; ok {
				is = paramOrDefault(mp, "IS", is)
				n = paramOrDefault(mp, "N", n)
			} else if v, err := ParseValue(rest[3]); err == nil {
				is = v
				if len(rest) > 4 {
					if v2, err := ParseValue(rest[4]); err == nil {
						n = v2
					}
				}
			}
		}
		c.Add(element.NewDiode(name, c.Node(rest[1]), c.Node(rest[2]), is, n))
		return nil

	case "Q":
		if len(fields) < 5 {
			return fmt.Errorf("%w: BJT %s requires collector, base, emitter, N|P", simerr.ErrInvalidElement, name)
		}
		pnp := strings.EqualFold(fields[4], "P")
		is, alphaF, alphaR, n := 1e-16, 0.99, 0.5, 1.0
		if len(fields) > 5 {
			if v, err := ParseValue(fields[5]); err == nil {
				is = v
			}
		}
		if len(fields) > 6 {
			if v, err := ParseValue(fields[6]); err == nil {
				alphaF = v
			}
		}
		if len(fields) > 7 {
			if v, err := ParseValue(fields[7]); err == nil {
				alphaR = v
			}
		}
		c.Add(element.NewBjt(name, c.Node(fields[1]), c.Node(fields[2]), c.Node(fields[3]), is, alphaF, alphaR, n, pnp))
		return nil

	case "M":
		if len(fields) < 5 {
			return fmt.Errorf("%w: MOSFET %s requires drain, gate, source, N|P", simerr.ErrInvalidElement, name)
		}
		pChan := strings.EqualFold(fields[4], "P")
		w, l, k, vth, lambda := 10e-6, 1e-6, 2e-5, 1.0, 0.0
		opt := []*float64{&w, &l, &k, &vth, &lambda}
		for i, p := range opt {
			if len(fields) > 5+i {
				if v, err := ParseValue(fields[5+i]); err == nil {
					*p = v
				}
			}
		}
		c.Add(element.NewMosfet(name, c.Node(fields[1]), c.Node(fields[2]), c.Node(fields[3]), w, l, k, vth, lambda, pChan))
		return nil

	case ">", ")", "(", "}", "{", "]", "[":
		return parseGate(c, lead, fields)

	default:
		return fmt.Errorf("%w: unrecognized element letter %q in %q", simerr.ErrInvalidElement, lead, name)
	}
}

func paramOrDefault(mp *element.ModelParam, key string, def float64) float64 {
	if mp == nil {
		return def
	}
	if v, ok := mp.Params[key]; ok {
		return v
	}
	return def
}

var gateKinds = map[string]element.GateKind{
	">": element.GateNOT,
	")": element.GateAND,
	"(": element.GateNAND,
	"}": element.GateOR,
	"{": element.GateNOR,
	"]": element.GateXOR,
	"[": element.GateXNOR,
}

func parseGate(c *circuit.Circuit, lead string, fields []string) error {
	kind := gateKinds[lead]
	name := fields[0]

	nIn := 2
	if kind == element.GateNOT {
		nIn = 1
	}
	// fields[0]=name, fields[1..nIn]=inputs, fields[nIn+1]=out, then V,Cin,Gain,R
	if len(fields) != nIn+6 {
		return fmt.Errorf("%w: logic gate %s requires %d input(s), output, V, Cin, gain, R", simerr.ErrInvalidElement, name, nIn)
	}

	in := make([]int, nIn)
	for i := 0; i < nIn; i++ {
		in[i] = c.Node(fields[1+i])
	}
	out := c.Node(fields[1+nIn])

	vals := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v, err := ParseValue(fields[2+nIn+i])
		if err != nil {
			return err
		}
		vals[i] = v
	}

	c.Add(element.NewLogicGate(name, kind, in, out, vals[0], vals[1], vals[2], vals[3]))
	return nil
}

// parseSource handles V and I lines, which share the same DC/SIN/PULSE/PWL
// sub-grammar after the two node tokens.
func parseSource(c *circuit.Circuit, fields []string, voltage bool) error {
	name := fields[0]
	if len(fields) < 4 {
		return fmt.Errorf("%w: source %s requires 2 nodes and a waveform", simerr.ErrInvalidElement, name)
	}
	a, b := c.Node(fields[1]), c.Node(fields[2])

	rest := strings.Join(fields[3:], " ")
	rest = strings.ReplaceAll(rest, "(", " ( ")
	rest = strings.ReplaceAll(rest, ")", " ) ")
	words := strings.Fields(rest)
	if len(words) == 0 {
		return fmt.Errorf("%w: source %s missing waveform type", simerr.ErrInvalidElement, name)
	}

	switch strings.ToUpper(words[0]) {
	case "DC":
		if len(words) < 2 {
			return fmt.Errorf("%w: source %s missing DC value", simerr.ErrInvalidElement, name)
		}
		v, err := ParseValue(words[1])
		if err != nil {
			return err
		}
		if voltage {
			c.Add(element.NewDCVoltageSource(name, a, b, v))
		} else {
			c.Add(element.NewDCCurrentSource(name, a, b, v))
		}
		return nil

	case "SIN":
		p, err := parseSinFields(stripParens(words[1:]))
		if err != nil {
			return err
		}
		if voltage {
			c.Add(element.NewSinVoltageSource(name, a, b, p))
		} else {
			c.Add(element.NewSinCurrentSource(name, a, b, p))
		}
		return nil

	case "PULSE":
		p, err := parsePulseFields(stripParens(words[1:]))
		if err != nil {
			return err
		}
		if voltage {
			c.Add(element.NewPulseVoltageSource(name, a, b, p))
		} else {
			c.Add(element.NewPulseCurrentSource(name, a, b, p))
		}
		return nil

	case "PWL":
		p, err := parsePWLFields(stripParens(words[1:]))
		if err != nil {
			return err
		}
		if voltage {
			c.Add(element.NewPWLVoltageSource(name, a, b, p))
		} else {
			c.Add(element.NewPWLCurrentSource(name, a, b, p))
		}
		return nil

	default:
		return fmt.Errorf("%w: unsupported source waveform %q", simerr.ErrInvalidElement, words[0])
	}
}

func stripParens(words []string) []string {
	var out []string
	for _, w := range words {
		if w == "(" || w == ")" {
			continue
		}
		out = append(out, w)
	}
	return out
}

func parseSinFields(f []string) (element.SinParams, error) {
	if len(f) < 3 {
		return element.SinParams{}, fmt.Errorf("%w: SIN requires offset, amplitude, freq", simerr.ErrInvalidElement)
	}
	var vals [7]float64
	for i, s := range f {
		if i >= 7 {
			break
		}
		v, err := ParseValue(s)
		if err != nil {
			return element.SinParams{}, err
		}
		vals[i] = v
	}
	return element.SinParams{
		Offset: vals[0], Amplitude: vals[1], Freq: vals[2],
		Delay: vals[3], Damping: vals[4], PhaseDeg: vals[5], Cycles: vals[6],
	}, nil
}

func parsePulseFields(f []string) (element.PulseParams, error) {
	if len(f) < 7 {
		return element.PulseParams{}, fmt.Errorf("%w: PULSE requires A1,A2,delay,rise,fall,ontime,period", simerr.ErrInvalidElement)
	}
	var vals [8]float64
	for i, s := range f {
		if i >= 8 {
			break
		}
		v, err := ParseValue(s)
		if err != nil {
			return element.PulseParams{}, err
		}
		vals[i] = v
	}
	return element.PulseParams{
		A1: vals[0], A2: vals[1], Delay: vals[2], Rise: vals[3], Fall: vals[4],
		OnTime: vals[5], Period: vals[6], Cycles: vals[7],
	}, nil
}

func parsePWLFields(f []string) (element.PWLParams, error) {
	if len(f) < 4 || len(f)%2 != 0 {
		return element.PWLParams{}, fmt.Errorf("%w: PWL requires pairs of time,value", simerr.ErrInvalidElement)
	}
	n := len(f) / 2
	times := make([]float64, n)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		t, err := ParseValue(f[2*i])
		if err != nil {
			return element.PWLParams{}, err
		}
		v, err := ParseValue(f[2*i+1])
		if err != nil {
			return element.PWLParams{}, err
		}
		times[i], values[i] = t, v
	}
	return element.PWLParams{Times: times, Values: values}, nil
}
