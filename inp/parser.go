// Package inp reads EPANET2 INP text files into a core.Network plus the
// run-time Config implied by its [TIMES]/[OPTIONS] sections. Every physical
// quantity is converted to SI at ingestion using the units package; nothing
// downstream of Parse ever sees a non-SI value.
package inp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hydrasolve/wntrgo/core"
	"github.com/hydrasolve/wntrgo/units"
)

// Config carries the run parameters recovered from [TIMES]/[OPTIONS].
type Config struct {
	DurationSec    float64
	StepSec        float64
	PatternStepSec float64
	FlowUnit       units.FlowUnit
}

// Result is the outcome of parsing one INP file.
type Result struct {
	Net      *core.Network
	Config   Config
	Warnings []error // UnsupportedControl and similar non-fatal diagnostics
}

type rawLine struct {
	lineNo int
	fields []string
}

// Parse reads an EPANET2 INP file section by section. Control lines that
// match neither the time-control nor the conditional-control grammar are
// collected as Warnings rather than aborting the parse; every other
// malformed line, and any control naming an unknown link or node, is a
// fatal error.
func Parse(r io.Reader) (*Result, error) {
	sections, err := splitSections(r)
	if err != nil {
		return nil, err
	}

	flowUnit, us, err := parseOptions(sections["OPTIONS"])
	if err != nil {
		return nil, err
	}
	cfg, err := parseTimes(sections["TIMES"])
	if err != nil {
		return nil, err
	}
	cfg.FlowUnit = flowUnit

	net := core.NewNetwork()

	if err := parsePatterns(net, sections["PATTERNS"]); err != nil {
		return nil, err
	}
	if err := parseCurves(net, sections["CURVES"]); err != nil {
		return nil, err
	}
	if err := parseJunctions(net, sections["JUNCTIONS"], flowUnit, us); err != nil {
		return nil, err
	}
	if err := parseReservoirs(net, sections["RESERVOIRS"], us); err != nil {
		return nil, err
	}
	if err := parseTanks(net, sections["TANKS"], us); err != nil {
		return nil, err
	}
	if err := parsePipes(net, sections["PIPES"], us); err != nil {
		return nil, err
	}
	if err := parsePumps(net, sections["PUMPS"]); err != nil {
		return nil, err
	}
	if err := parseValves(net, sections["VALVES"], us); err != nil {
		return nil, err
	}
	warnings, err := parseControls(net, sections["CONTROLS"])
	if err != nil {
		return nil, err
	}

	return &Result{Net: net, Config: cfg, Warnings: warnings}, nil
}

func splitSections(r io.Reader) (map[string][]rawLine, error) {
	sections := make(map[string][]rawLine)
	section := ""

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") {
			section = strings.ToUpper(strings.Trim(line, "[]"))
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		sections[section] = append(sections[section], rawLine{lineNo, fields})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("inp: %w", err)
	}
	return sections, nil
}

func parseOptions(lines []rawLine) (units.FlowUnit, bool, error) {
	for _, l := range lines {
		if len(l.fields) >= 2 && strings.EqualFold(l.fields[0], "UNITS") {
			fu := units.FlowUnit(strings.ToUpper(l.fields[1]))
			if _, err := units.FlowToSI(fu); err != nil {
				return "", false, fmt.Errorf("inp: line %d: %w", l.lineNo, err)
			}
			return fu, units.IsUSCustomary(fu), nil
		}
	}
	return "", false, ErrMissingUnits
}

func parseTimes(lines []rawLine) (Config, error) {
	cfg := Config{StepSec: 3600, PatternStepSec: 3600}
	for _, l := range lines {
		if len(l.fields) < 2 {
			continue
		}
		key := strings.ToUpper(l.fields[0])
		switch {
		case key == "DURATION":
			v, err := parseClock(l.fields[len(l.fields)-1])
			if err != nil {
				return cfg, fmt.Errorf("inp: line %d: %w", l.lineNo, err)
			}
			cfg.DurationSec = v
		case key == "HYDRAULIC" && len(l.fields) >= 3 && strings.EqualFold(l.fields[1], "TIMESTEP"):
			v, err := parseClock(l.fields[2])
			if err != nil {
				return cfg, fmt.Errorf("inp: line %d: %w", l.lineNo, err)
			}
			cfg.StepSec = v
		case key == "PATTERN" && len(l.fields) >= 3 && strings.EqualFold(l.fields[1], "TIMESTEP"):
			v, err := parseClock(l.fields[2])
			if err != nil {
				return cfg, fmt.Errorf("inp: line %d: %w", l.lineNo, err)
			}
			cfg.PatternStepSec = v
		}
	}
	return cfg, nil
}

func parsePatterns(net *core.Network, lines []rawLine) error {
	acc := make(map[string][]float64)
	var order []string
	for _, l := range lines {
		if len(l.fields) < 2 {
			continue
		}
		id := l.fields[0]
		if _, ok := acc[id]; !ok {
			order = append(order, id)
		}
		for _, f := range l.fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return fmt.Errorf("inp: line %d: %w", l.lineNo, ErrMalformedLine)
			}
			acc[id] = append(acc[id], v)
		}
	}
	for _, id := range order {
		net.AddPattern(core.Pattern{Name: id, Multipliers: acc[id]})
	}
	return nil
}

func parseCurves(net *core.Network, lines []rawLine) error {
	acc := make(map[string][]core.CurvePoint)
	var order []string
	for _, l := range lines {
		if len(l.fields) < 3 {
			continue
		}
		id := l.fields[0]
		if _, ok := acc[id]; !ok {
			order = append(order, id)
		}
		x, err := strconv.ParseFloat(l.fields[1], 64)
		if err != nil {
			return fmt.Errorf("inp: line %d: %w", l.lineNo, ErrMalformedLine)
		}
		y, err := strconv.ParseFloat(l.fields[2], 64)
		if err != nil {
			return fmt.Errorf("inp: line %d: %w", l.lineNo, ErrMalformedLine)
		}
		acc[id] = append(acc[id], core.CurvePoint{X: x, Y: y})
	}
	for _, id := range order {
		net.AddCurve(core.Curve{Name: id, Points: acc[id]})
	}
	return nil
}

func parseJunctions(net *core.Network, lines []rawLine, fu units.FlowUnit, us bool) error {
	flowFactor, err := units.FlowToSI(fu)
	if err != nil {
		return fmt.Errorf("inp: %w", err)
	}
	for _, l := range lines {
		if len(l.fields) < 2 {
			return fmt.Errorf("inp: line %d: %w", l.lineNo, ErrMalformedLine)
		}
		elev, err := strconv.ParseFloat(l.fields[1], 64)
		if err != nil {
			return fmt.Errorf("inp: line %d: %w", l.lineNo, ErrMalformedLine)
		}
		var demand float64
		if len(l.fields) >= 3 {
			demand, err = strconv.ParseFloat(l.fields[2], 64)
			if err != nil {
				return fmt.Errorf("inp: line %d: %w", l.lineNo, ErrMalformedLine)
			}
		}
		pattern := ""
		if len(l.fields) >= 4 {
			pattern = l.fields[3]
		}
		nd := core.Node{
			Name: l.fields[0],
			Kind: core.KindJunction,
			Junction: core.Junction{
				Elevation:  units.LengthToSI(elev, us),
				BaseDemand: demand * flowFactor,
				Pattern:    pattern,
				PF:         20, // EPANET's default PDD nominal pressure; overridable by caller post-parse
				P0:         0,
			},
		}
		if _, err := net.AddNode(nd); err != nil {
			return fmt.Errorf("inp: line %d: %w", l.lineNo, err)
		}
	}
	return nil
}

func parseReservoirs(net *core.Network, lines []rawLine, us bool) error {
	for _, l := range lines {
		if len(l.fields) < 2 {
			return fmt.Errorf("inp: line %d: %w", l.lineNo, ErrMalformedLine)
		}
		head, err := strconv.ParseFloat(l.fields[1], 64)
		if err != nil {
			return fmt.Errorf("inp: line %d: %w", l.lineNo, ErrMalformedLine)
		}
		pattern := ""
		if len(l.fields) >= 3 {
			pattern = l.fields[2]
		}
		nd := core.Node{
			Name:      l.fields[0],
			Kind:      core.KindReservoir,
			Reservoir: core.Reservoir{Head: units.LengthToSI(head, us), Pattern: pattern},
		}
		if _, err := net.AddNode(nd); err != nil {
			return fmt.Errorf("inp: line %d: %w", l.lineNo, err)
		}
	}
	return nil
}

func parseTanks(net *core.Network, lines []rawLine, us bool) error {
	for _, l := range lines {
		if len(l.fields) < 7 {
			return fmt.Errorf("inp: line %d: %w", l.lineNo, ErrMalformedLine)
		}
		vals := make([]float64, 6)
		for i := 0; i < 6; i++ {
			v, err := strconv.ParseFloat(l.fields[i+1], 64)
			if err != nil {
				return fmt.Errorf("inp: line %d: %w", l.lineNo, ErrMalformedLine)
			}
			vals[i] = v
		}
		nd := core.Node{
			Name: l.fields[0],
			Kind: core.KindTank,
			Tank: core.Tank{
				Elevation: units.LengthToSI(vals[0], us),
				InitLevel: units.LengthToSI(vals[1], us),
				MinLevel:  units.LengthToSI(vals[2], us),
				MaxLevel:  units.LengthToSI(vals[3], us),
				Diameter:  units.TankDiameterToSI(vals[4], us),
				MinVol:    vals[5],
			},
		}
		if _, err := net.AddNode(nd); err != nil {
			return fmt.Errorf("inp: line %d: %w", l.lineNo, err)
		}
	}
	return nil
}

func parsePipes(net *core.Network, lines []rawLine, us bool) error {
	for _, l := range lines {
		if len(l.fields) < 6 {
			return fmt.Errorf("inp: line %d: %w", l.lineNo, ErrMalformedLine)
		}
		length, err := strconv.ParseFloat(l.fields[3], 64)
		if err != nil {
			return fmt.Errorf("inp: line %d: %w", l.lineNo, ErrMalformedLine)
		}
		diameter, err := strconv.ParseFloat(l.fields[4], 64)
		if err != nil {
			return fmt.Errorf("inp: line %d: %w", l.lineNo, ErrMalformedLine)
		}
		roughness, err := strconv.ParseFloat(l.fields[5], 64)
		if err != nil {
			return fmt.Errorf("inp: line %d: %w", l.lineNo, ErrMalformedLine)
		}
		var minorLoss float64
		if len(l.fields) >= 7 {
			minorLoss, _ = strconv.ParseFloat(l.fields[6], 64)
		}
		status := core.StatusOpen
		if len(l.fields) >= 8 {
			switch strings.ToUpper(l.fields[7]) {
			case "CLOSED":
				status = core.StatusClosed
			case "CV":
				status = core.StatusCV
			}
		}
		link := core.Link{
			Name: l.fields[0],
			Kind: core.KindPipe,
			Pipe: core.Pipe{
				Length:     units.LengthToSI(length, us),
				Diameter:   units.PipeDiameterToSI(diameter, us),
				Roughness:  roughness,
				MinorLoss:  minorLoss,
				BaseStatus: status,
			},
		}
		if _, err := net.AddLink(link, l.fields[1], l.fields[2]); err != nil {
			return fmt.Errorf("inp: line %d: %w", l.lineNo, err)
		}
	}
	return nil
}

func parsePumps(net *core.Network, lines []rawLine) error {
	for _, l := range lines {
		if len(l.fields) < 5 {
			return fmt.Errorf("inp: line %d: %w", l.lineNo, ErrMalformedLine)
		}
		pump := core.Pump{Mode: core.PumpHead}
		for i := 3; i+1 < len(l.fields); i += 2 {
			switch strings.ToUpper(l.fields[i]) {
			case "HEAD":
				curve, ok := net.Curve(l.fields[i+1])
				if !ok {
					return fmt.Errorf("inp: line %d: curve %q: %w", l.lineNo, l.fields[i+1], ErrUnknownReference)
				}
				pump.Mode = core.PumpHead
				pump.Curve = curve
			case "POWER":
				p, err := strconv.ParseFloat(l.fields[i+1], 64)
				if err != nil {
					return fmt.Errorf("inp: line %d: %w", l.lineNo, ErrMalformedLine)
				}
				pump.Mode = core.PumpPower
				pump.Power = p * units.HPToWatts
			}
		}
		link := core.Link{Name: l.fields[0], Kind: core.KindPump, Pump: pump}
		if _, err := net.AddLink(link, l.fields[1], l.fields[2]); err != nil {
			return fmt.Errorf("inp: line %d: %w", l.lineNo, err)
		}
	}
	return nil
}

func parseValves(net *core.Network, lines []rawLine, us bool) error {
	for _, l := range lines {
		if len(l.fields) < 6 {
			return fmt.Errorf("inp: line %d: %w", l.lineNo, ErrMalformedLine)
		}
		diameter, err := strconv.ParseFloat(l.fields[3], 64)
		if err != nil {
			return fmt.Errorf("inp: line %d: %w", l.lineNo, ErrMalformedLine)
		}
		kind := core.ValveOther
		if strings.EqualFold(l.fields[4], "PRV") {
			kind = core.ValvePRV
		}
		setting, err := strconv.ParseFloat(l.fields[5], 64)
		if err != nil {
			return fmt.Errorf("inp: line %d: %w", l.lineNo, ErrMalformedLine)
		}
		var minorLoss float64
		if len(l.fields) >= 7 {
			minorLoss, _ = strconv.ParseFloat(l.fields[6], 64)
		}
		settingSI := setting
		if us {
			settingSI = setting * units.PSIToMeters
		}
		link := core.Link{
			Name: l.fields[0],
			Kind: core.KindValve,
			Valve: core.Valve{
				Diameter:  units.PipeDiameterToSI(diameter, us),
				Kind:      kind,
				MinorLoss: minorLoss,
				Setting:   settingSI,
			},
		}
		if _, err := net.AddLink(link, l.fields[1], l.fields[2]); err != nil {
			return fmt.Errorf("inp: line %d: %w", l.lineNo, err)
		}
	}
	return nil
}

// parseControls recognizes two grammars: time controls ("LINK id
// OPEN|CLOSED AT TIME t") and conditional controls ("LINK id
// OPEN|CLOSED IF NODE id ABOVE|BELOW v"). Anything else is surfaced as an
// UnsupportedControl warning and skipped.
func parseControls(net *core.Network, lines []rawLine) ([]error, error) {
	var warnings []error
	for _, l := range lines {
		f := l.fields
		if len(f) >= 6 && strings.EqualFold(f[0], "LINK") && strings.EqualFold(f[3], "AT") && strings.EqualFold(f[4], "TIME") {
			linkName := f[1]
			status := strings.ToUpper(f[2])
			if _, err := net.LinkIndex(linkName); err != nil {
				return warnings, fmt.Errorf("inp: line %d: link %q: %w", l.lineNo, linkName, ErrUnknownReference)
			}
			t, err := parseClock(f[5])
			if err != nil {
				return warnings, fmt.Errorf("inp: line %d: %w", l.lineNo, err)
			}
			tc := net.TimeControls[linkName]
			switch status {
			case "OPEN":
				tc.OpenTimes = append(tc.OpenTimes, t)
			case "CLOSED":
				tc.ClosedTimes = append(tc.ClosedTimes, t)
			case "ACTIVE":
				tc.ActiveTimes = append(tc.ActiveTimes, t)
			default:
				warnings = append(warnings, UnsupportedControl{LineNo: l.lineNo, Text: strings.Join(f, " ")})
				continue
			}
			net.TimeControls[linkName] = tc
			continue
		}

		if len(f) >= 7 && strings.EqualFold(f[0], "LINK") && strings.EqualFold(f[3], "IF") && strings.EqualFold(f[4], "NODE") {
			linkName := f[1]
			status := strings.ToUpper(f[2])
			nodeName := f[5]
			cmp := strings.ToUpper(f[6])
			if len(f) < 8 {
				warnings = append(warnings, UnsupportedControl{LineNo: l.lineNo, Text: strings.Join(f, " ")})
				continue
			}
			if _, err := net.LinkIndex(linkName); err != nil {
				return warnings, fmt.Errorf("inp: line %d: link %q: %w", l.lineNo, linkName, ErrUnknownReference)
			}
			if _, err := net.NodeIndex(nodeName); err != nil {
				return warnings, fmt.Errorf("inp: line %d: node %q: %w", l.lineNo, nodeName, ErrUnknownReference)
			}
			v, err := strconv.ParseFloat(f[7], 64)
			if err != nil {
				return warnings, fmt.Errorf("inp: line %d: %w", l.lineNo, ErrMalformedLine)
			}
			cc := net.ConditionalControls[linkName]
			th := core.Threshold{Node: nodeName, Value: v}
			switch {
			case status == "OPEN" && cmp == "ABOVE":
				cc.OpenAbove = append(cc.OpenAbove, th)
			case status == "OPEN" && cmp == "BELOW":
				cc.OpenBelow = append(cc.OpenBelow, th)
			case status == "CLOSED" && cmp == "ABOVE":
				cc.ClosedAbove = append(cc.ClosedAbove, th)
			case status == "CLOSED" && cmp == "BELOW":
				cc.ClosedBelow = append(cc.ClosedBelow, th)
			default:
				warnings = append(warnings, UnsupportedControl{LineNo: l.lineNo, Text: strings.Join(f, " ")})
				continue
			}
			net.ConditionalControls[linkName] = cc
			continue
		}

		warnings = append(warnings, UnsupportedControl{LineNo: l.lineNo, Text: strings.Join(f, " ")})
	}
	return warnings, nil
}
