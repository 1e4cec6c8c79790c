// Command psfdump prints a summary of a PSF result file: its name, kind,
// signal count, and header properties, plus its signal names with -signals
// and one decoded signal with -signal.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/chwa/psfdata"
	"github.com/chwa/psfdata/internal/props"
)

func formatPropValue(v props.Value) string {
	switch v.Kind {
	case props.KindString:
		return v.String
	case props.KindInt:
		return fmt.Sprintf("%d", v.Int)
	case props.KindDouble:
		return fmt.Sprintf("%g", v.Double)
	case props.KindXLIndex:
		return fmt.Sprintf("psfxl_idx(offset=%d)", v.XL.Offset)
	default:
		return "?"
	}
}

func main() {
	listSignals := flag.Bool("signals", false, "list every signal name")
	signalName := flag.String("signal", "", "print one signal's decoded value")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: psfdump [flags] <file.psf>")
		flag.PrintDefaults()
		return
	}

	f, err := psfdata.Open(args[0])
	if err != nil {
		log.Fatalf("opening %s: %v", args[0], err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("closing %s: %v", args[0], err)
		}
	}()

	if err := psfdata.WriteSummary(os.Stdout, f); err != nil {
		log.Fatalf("writing summary: %v", err)
	}

	for _, name := range f.Header().Names() {
		v, _ := f.Header().Get(name)
		fmt.Printf("  %s = %s\n", name, formatPropValue(v))
	}

	if *listSignals {
		for _, name := range f.Names() {
			fmt.Println(name)
		}
	}

	if *signalName != "" {
		v, err := f.GetSignal(*signalName)
		if err != nil {
			log.Fatalf("reading signal %q: %v", *signalName, err)
		}
		if w, ok := v.(psfdata.Waveform); ok {
			fmt.Printf("%s: %d points, x unit %q, y unit %q\n", w.Name, len(w.X), w.XUnit, w.YUnit)
		} else {
			fmt.Printf("%s = %v\n", *signalName, v)
		}
	}
}
