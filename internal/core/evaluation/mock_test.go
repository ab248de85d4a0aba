package evaluation

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

const mockDims = 64

// MockEmbedder hashes lower-cased words into a bag-of-words vector, so equal
// texts embed identically and texts sharing words are similar. Fixed, when
// set, is returned for every text instead.
type MockEmbedder struct {
	Fixed []float32
	Err   error
	Calls [][]string
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.Calls = append(m.Calls, texts)
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if m.Fixed != nil {
			out[i] = m.Fixed
			continue
		}
		out[i] = bagOfWords(t)
	}
	return out, nil
}

func bagOfWords(text string) []float32 {
	vec := make([]float32, mockDims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%mockDims]++
	}
	return vec
}

type MockLLM struct {
	Response string
	Err      error
	Prompts  []string
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
