package data

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/taming/internal/model"
)

//go:embed species/*.yaml
var embeddedSpecies embed.FS

// DefaultSpeciesFS returns the species definitions packaged with the binary.
func DefaultSpeciesFS() fs.FS {
	sub, err := fs.Sub(embeddedSpecies, "species")
	if err != nil {
		// embed path is fixed at compile time
		panic(fmt.Sprintf("species fs: %v", err))
	}
	return sub
}

// maxParallelParse bounds concurrent file decoding.
const maxParallelParse = 8

// speciesDoc is the on-disk shape of one species definition.
// Pointer fields distinguish "missing" from zero values.
type speciesDoc struct {
	Species               *string   `yaml:"species"`
	Diet                  *string   `yaml:"diet"`
	AcceptedFoods         *[]string `yaml:"accepted_foods"`
	Mountable             *bool     `yaml:"mountable"`
	CalmingDistance       *float64  `yaml:"calming_distance"`
	CalmingDuration       *int64    `yaml:"calming_duration"`
	CalmedDuration        *int64    `yaml:"calmed_duration"`
	TrustPerFeed          *int      `yaml:"trust_per_feed"`
	TrustPerMountedSecond *int      `yaml:"trust_per_mounted_second"`
	RequiredTrust         *int      `yaml:"required_trust"`
	MaxFollowDistance     *float64  `yaml:"max_follow_distance"`
}

func (d *speciesDoc) missingFields() []string {
	var missing []string
	check := func(name string, present bool) {
		if !present {
			missing = append(missing, name)
		}
	}
	check("species", d.Species != nil)
	check("diet", d.Diet != nil)
	check("accepted_foods", d.AcceptedFoods != nil)
	check("mountable", d.Mountable != nil)
	check("calming_distance", d.CalmingDistance != nil)
	check("calming_duration", d.CalmingDuration != nil)
	check("calmed_duration", d.CalmedDuration != nil)
	check("trust_per_feed", d.TrustPerFeed != nil)
	check("trust_per_mounted_second", d.TrustPerMountedSecond != nil)
	check("required_trust", d.RequiredTrust != nil)
	check("max_follow_distance", d.MaxFollowDistance != nil)
	return missing
}

func (d *speciesDoc) rule() (*model.SpeciesRule, error) {
	if missing := d.missingFields(); len(missing) > 0 {
		return nil, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	diet, err := model.ParseDiet(*d.Diet)
	if err != nil {
		return nil, err
	}
	return model.NewSpeciesRule(model.SpeciesRuleParams{
		ID:                    *d.Species,
		Diet:                  diet,
		AcceptedFoods:         *d.AcceptedFoods,
		Mountable:             *d.Mountable,
		CalmingDistance:       *d.CalmingDistance,
		CalmingDuration:       *d.CalmingDuration,
		CalmedDuration:        *d.CalmedDuration,
		TrustPerFeed:          *d.TrustPerFeed,
		TrustPerMountedSecond: *d.TrustPerMountedSecond,
		RequiredTrust:         *d.RequiredTrust,
		MaxFollowDistance:     *d.MaxFollowDistance,
	})
}

// ParseSpecies decodes and validates a single species definition.
// Unknown keys are rejected.
func ParseSpecies(r io.Reader) (*model.SpeciesRule, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc speciesDoc
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty species definition")
		}
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	return doc.rule()
}

// LoadSpecies reads every *.yaml / *.yml file at the root of fsys.
// Any invalid file fails the whole load. Results are sorted by file name.
func LoadSpecies(ctx context.Context, fsys fs.FS) ([]*model.SpeciesRule, error) {
	var names []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := fs.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("listing species files: %w", err)
		}
		names = append(names, matches...)
	}
	slices.Sort(names)

	rules := make([]*model.SpeciesRule, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelParse)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			raw, err := fs.ReadFile(fsys, name)
			if err != nil {
				return fmt.Errorf("reading species %s: %w", name, err)
			}
			rule, err := ParseSpecies(bytes.NewReader(raw))
			if err != nil {
				return fmt.Errorf("loading species %s: %w", name, err)
			}
			rules[i] = rule
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rules, nil
}

// LoadSpeciesInto loads every source in order and registers the rules.
// A species defined twice across sources is a duplicate error.
func LoadSpeciesInto(ctx context.Context, table *SpeciesTable, sources ...fs.FS) (int, error) {
	total := 0
	for _, src := range sources {
		rules, err := LoadSpecies(ctx, src)
		if err != nil {
			return total, err
		}
		for _, r := range rules {
			if err := table.Register(r); err != nil {
				return total, err
			}
			total++
		}
	}

	slog.Info("loaded species", "count", total, "sources", len(sources))
	return total, nil
}
