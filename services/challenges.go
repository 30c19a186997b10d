package services

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed challenges.yml
var defaultChallengesYAML []byte

// ChallengeBank is a fixed list of practice sentences.
type ChallengeBank struct {
	challenges []string
	pick       func(n int) int
}

type challengeFile struct {
	Challenges []string `yaml:"challenges"`
}

// LoadChallengeBank parses a YAML document with a top-level "challenges" list.
func LoadChallengeBank(data []byte) (*ChallengeBank, error) {
	var file challengeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenges: %w", err)
	}
	var out []string
	for _, c := range file.Challenges {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("challenge bank is empty")
	}
	return &ChallengeBank{challenges: out, pick: rand.IntN}, nil
}

// DefaultChallengeBank returns the embedded bank.
func DefaultChallengeBank() *ChallengeBank {
	bank, err := LoadChallengeBank(defaultChallengesYAML)
	if err != nil {
		panic("embedded challenges.yml is invalid: " + err.Error())
	}
	return bank
}

// Random returns one challenge at random.
func (b *ChallengeBank) Random() string {
	return b.challenges[b.pick(len(b.challenges))]
}

// All returns a copy of the bank.
func (b *ChallengeBank) All() []string {
	return append([]string(nil), b.challenges...)
}
