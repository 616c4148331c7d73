// Command mnasim reads a netlist file, runs its terminating directive
// (.TRAN or .AC), and prints the resulting table.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/nrogoz/mnasim/pkg/driver"
	"github.com/nrogoz/mnasim/pkg/netlist"
	"github.com/nrogoz/mnasim/pkg/util"
)

func main() {
	temp := flag.Float64("temp", 0, "device temperature in Kelvin (0 = default 300.15K)")
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatal("Usage: mnasim <netlist_file>")
	}

	content, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("reading netlist file: %v", err)
	}

	c, directive, err := netlist.Parse(string(content))
	if err != nil {
		log.Fatalf("parsing netlist: %v", err)
	}

	if directive.IsAC {
		tbl, err := driver.RunAC(c, driver.ACOptions{
			Scale:          directive.AC.Scale,
			StepsPerDecade: directive.AC.StepsPerDecade,
			FStart:         directive.AC.FStart,
			FEnd:           directive.AC.FEnd,
			Temp:           *temp,
		})
		if err != nil {
			log.Fatalf("AC sweep: %v", err)
		}
		printAC(tbl)
		return
	}

	tbl, err := driver.RunTransient(c, driver.TranOptions{
		End:        directive.Tran.End,
		Step:       directive.Tran.Step,
		Method:     directive.Tran.Method,
		Multiplier: directive.Tran.Multiplier,
		UseIC:      directive.Tran.UseIC,
		Temp:       *temp,
	})
	if err != nil {
		log.Fatalf("transient analysis: %v", err)
	}
	printTransient(tbl)
}

func printTransient(tbl interface {
	Map() map[string][]float64
	Len() int
}) {
	times, ok := tbl.Map()["t"]
	if !ok {
		return
	}
	fmt.Printf("\nTransient Analysis Results (%d time points):\n", len(times))
	fmt.Println("Time        Node Voltages        Branch Currents")
	fmt.Println("------------------------------------------------")

	var voltage, current []string
	for name := range tbl.Map() {
		if name == "t" {
			continue
		}
		if strings.HasPrefix(name, "J") {
			current = append(current, name)
		} else {
			voltage = append(voltage, name)
		}
	}
	sort.Strings(voltage)
	sort.Strings(current)

	m := tbl.Map()
	for i, t := range times {
		fmt.Printf("%9s  ", util.FormatValueFactor(t, "s"))
		for _, name := range voltage {
			fmt.Printf("V(%s)=%s  ", name, util.FormatValueFactor(m[name][i], "V"))
		}
		for _, name := range current {
			fmt.Printf("%s=%s  ", name, util.FormatValueFactor(m[name][i], "A"))
		}
		fmt.Println()
	}
}

func printAC(tbl interface {
	Map() map[string][]float64
	Len() int
}) {
	freqs, ok := tbl.Map()["freq"]
	if !ok {
		return
	}
	fmt.Printf("\nAC Analysis Results (%d frequency points):\n", len(freqs))
	fmt.Println("Frequency      Magnitude (dB) / Phase (deg)")
	fmt.Println("-----------------------------------------------------------------------------")

	var bases []string
	for name := range tbl.Map() {
		if strings.HasSuffix(name, "_DB") {
			bases = append(bases, strings.TrimSuffix(name, "_DB"))
		}
	}
	sort.Strings(bases)

	m := tbl.Map()
	for i, f := range freqs {
		fmt.Printf("%-13s", util.FormatFrequency(f))
		for _, base := range bases {
			db := m[base+"_DB"][i]
			phase := m[base+"_PHASE"][i]
			fmt.Printf("%s=%sdB<%sdeg  ", base, util.FormatDB(db), util.FormatPhase(phase))
		}
		fmt.Println()
	}
}
