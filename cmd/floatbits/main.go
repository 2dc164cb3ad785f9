package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"floatbits/pkg/config"
	"floatbits/pkg/encodingrepository"
	"floatbits/pkg/floatenc"
	"floatbits/pkg/types"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

func main() {
	configPath := flag.String("config-path", "", "Path to a JSON configuration file")
	values := flag.String("values", "", "Comma-separated float values to encode")
	order := flag.String("order", "", "Bit order within a byte: msb or lsb")
	dataPath := flag.String("data-path", "", "Directory of the encoding catalog; empty disables storage")
	list := flag.Bool("list", false, "Print every stored encoding after encoding the values")

	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *values != "" {
		parsed, err := parseValues(*values)
		if err != nil {
			log.Fatalf("Error: --values: %v", err)
		}
		cfg.Values = parsed
	}
	if *order != "" {
		cfg.Order = *order
	}
	if *dataPath != "" {
		cfg.DataPath = *dataPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if *list && cfg.DataPath == "" {
		log.Fatal("Error: --list requires --data-path")
	}

	if err := run(cfg, *list, os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}

func parseValues(s string) ([]float32, error) {
	var out []float32
	for _, field := range strings.Split(s, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
		if err != nil {
			return nil, err
		}
		out = append(out, float32(f))
	}
	return out, nil
}

// run prints the computed and system representation of every configured
// value and, when a data path is set, records the computed encodings.
func run(cfg config.Config, list bool, out io.Writer) error {
	order, err := cfg.BitOrder()
	if err != nil {
		return err
	}
	delim, err := cfg.DelimiterByte()
	if err != nil {
		return err
	}

	var repo *encodingrepository.Repository
	if cfg.DataPath != "" {
		repo, err = encodingrepository.Open(cfg.DataPath, nil)
		if err != nil {
			return err
		}
		defer repo.Close()
		if err := repo.BeginTransaction(); err != nil {
			return err
		}
	}

	runID := uuid.New()
	enc := floatenc.NewEncoder(order)
	stored := 0
	for _, v := range cfg.Values {
		computed, err := enc.Encode(v)
		if err != nil {
			log.Printf("Skipping %v: %v", v, err)
			continue
		}
		native, err := floatenc.Native(v, order)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Float value = %f\n", v)
		fmt.Fprintf(out, "Computed binary representation: %s\n", computed.Format(delim))
		fmt.Fprintf(out, "System binary representation:   %s\n", native.Format(delim))
		if !computed.Equal(native) {
			log.Printf("Computed encoding of %v differs from the system representation", v)
		}

		if repo == nil {
			continue
		}
		rec := types.Record{Value: v, Order: order, Bits: computed, RunID: runID}
		if err := repo.Put(rec); err != nil {
			repo.RollbackTransaction()
			return errors.Wrapf(err, "failed to store encoding of %v", v)
		}
		stored++
	}

	if repo == nil {
		return nil
	}
	if err := repo.CommitTransaction(); err != nil {
		return errors.Wrap(err, "failed to commit encodings")
	}
	log.Printf("Stored %d encodings in %s (run %s)", stored, cfg.DataPath, runID)

	if !list {
		return nil
	}
	records, err := repo.List()
	if err != nil {
		return err
	}
	for _, rec := range records {
		fmt.Fprintf(out, "%-14v %-9v %s  run %s\n", rec.Value, rec.Order, rec.Bits.Format(delim), rec.RunID)
	}
	return nil
}
