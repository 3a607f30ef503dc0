package generator

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/Project-Sylos/Folio/internal/types"
	"github.com/google/uuid"
)

// RNG wraps math/rand.Rand for seeded random generation
type RNG struct {
	*rand.Rand
}

// NewRNG creates a new seeded random number generator
func NewRNG(seed int64) *RNG {
	return &RNG{
		Rand: rand.New(rand.NewSource(seed)),
	}
}

// CalculationTypes are the calculation kinds demo histories are drawn from
var CalculationTypes = []string{"integral", "interpolation", "solid_diffusion", "ecm", "regression"}

// Folder is a generated folder with its histories and subfolders.
// Ids are assigned by the store when the tree is inserted.
type Folder struct {
	Name      string
	Histories []History
	Children  []Folder
}

// History is a generated calculation record
type History struct {
	Name            *string
	CalculationType string
	Input           string
	Output          string
	Timestamp       time.Time
	Size            int64
}

// HistorySize is the accounted size of a history: the byte length of its
// input plus the byte length of its output.
func HistorySize(input, output string) int64 {
	return int64(len(input) + len(output))
}

// GenerateTree builds a demo drive: top-level folders, each with nested
// subfolders down to cfg.MaxDepth, histories in every folder. The same
// seed always yields the same tree, timestamps included, relative to base.
func GenerateTree(cfg types.SeedConfig, base time.Time) ([]Folder, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	rng := NewRNG(cfg.Seed)
	return GenerateChildren(1, rng, cfg, base)
}

// GenerateChildren generates the folders at depth (1 = directly under the root)
func GenerateChildren(depth int, rng *RNG, cfg types.SeedConfig, base time.Time) ([]Folder, error) {
	if depth > cfg.MaxDepth {
		return nil, nil
	}

	folderCount := rng.Intn(cfg.MaxFolders-cfg.MinFolders+1) + cfg.MinFolders
	folders := make([]Folder, 0, folderCount)
	for i := 0; i < folderCount; i++ {
		folder, err := generateFolder(i+1, depth, rng, cfg, base)
		if err != nil {
			return nil, fmt.Errorf("failed to generate folder %d at depth %d: %w", i+1, depth, err)
		}
		folders = append(folders, folder)
	}
	return folders, nil
}

func generateFolder(index, depth int, rng *RNG, cfg types.SeedConfig, base time.Time) (Folder, error) {
	folder := Folder{Name: fmt.Sprintf("folder_%d_%d", depth, index)}

	historyCount := rng.Intn(cfg.MaxHistories-cfg.MinHistories+1) + cfg.MinHistories
	for i := 0; i < historyCount; i++ {
		h, err := generateHistory(rng, base)
		if err != nil {
			return Folder{}, fmt.Errorf("failed to generate history %d: %w", i+1, err)
		}
		folder.Histories = append(folder.Histories, h)
	}

	children, err := GenerateChildren(depth+1, rng, cfg, base)
	if err != nil {
		return Folder{}, err
	}
	folder.Children = children
	return folder, nil
}

// generateHistory creates a record with a random calculation type and
// input/output payloads. Roughly half are left unnamed so clients show
// their derived label.
func generateHistory(rng *RNG, base time.Time) (History, error) {
	calcType := CalculationTypes[rng.Intn(len(CalculationTypes))]

	params := map[string]float64{"a": float64(rng.Intn(100)), "b": float64(rng.Intn(100) + 100)}
	input, err := json.Marshal(params)
	if err != nil {
		return History{}, fmt.Errorf("failed to marshal input: %w", err)
	}
	output, err := json.Marshal(types.Result{
		Kind: types.ResultText,
		Text: fmt.Sprintf("%.4f", rng.Float64()*params["b"]),
	})
	if err != nil {
		return History{}, fmt.Errorf("failed to marshal output: %w", err)
	}

	h := History{
		CalculationType: calcType,
		Input:           string(input),
		Output:          string(output),
		Timestamp:       base.Add(-time.Duration(rng.Intn(90*24)) * time.Hour).UTC().Truncate(time.Second),
	}
	h.Size = HistorySize(h.Input, h.Output)

	if rng.Intn(2) == 0 {
		// Reading the id from rng keeps the tree reproducible
		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			return History{}, fmt.Errorf("failed to generate history name: %w", err)
		}
		name := fmt.Sprintf("%s-%s", calcType, id.String()[:8])
		h.Name = &name
	}
	return h, nil
}

// ValidateConfig validates the generator configuration
func ValidateConfig(cfg types.SeedConfig) error {
	if cfg.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be at least 1")
	}
	if cfg.MinFolders < 0 || cfg.MaxFolders < cfg.MinFolders {
		return fmt.Errorf("invalid folder count range: min=%d, max=%d", cfg.MinFolders, cfg.MaxFolders)
	}
	if cfg.MinHistories < 0 || cfg.MaxHistories < cfg.MinHistories {
		return fmt.Errorf("invalid history count range: min=%d, max=%d", cfg.MinHistories, cfg.MaxHistories)
	}
	return nil
}

// Count returns the number of folders and histories in a generated tree
func Count(folders []Folder) (nFolders, nHistories int) {
	for _, f := range folders {
		nFolders++
		nHistories += len(f.Histories)
		cf, ch := Count(f.Children)
		nFolders += cf
		nHistories += ch
	}
	return nFolders, nHistories
}
