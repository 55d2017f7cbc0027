package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// LayerWeights is the serialized form of a Linear layer.
type LayerWeights struct {
	W [][]float64 `json:"w"` // shape: [in][out]
	B []float64   `json:"b"` // shape: [out]
}

func (l *Linear) Snapshot() LayerWeights {
	in, out := l.W.Dims()
	s := LayerWeights{W: make([][]float64, in), B: make([]float64, out)}
	for i := 0; i < in; i++ {
		s.W[i] = mat.Row(nil, i, l.W)
	}
	copy(s.B, l.B.RawRowView(0))
	return s
}

// Check reports whether s can be restored into l.
func (l *Linear) Check(s LayerWeights) error {
	in, out := l.W.Dims()
	if len(s.W) != in || len(s.B) != out {
		return fmt.Errorf("%w: want %dx%d", ErrShape, in, out)
	}
	for _, row := range s.W {
		if len(row) != out {
			return fmt.Errorf("%w: want %dx%d", ErrShape, in, out)
		}
	}
	return nil
}

func (l *Linear) Restore(s LayerWeights) error {
	if err := l.Check(s); err != nil {
		return err
	}
	for i, row := range s.W {
		l.W.SetRow(i, row)
	}
	l.B.SetRow(0, s.B)
	return nil
}

func (m *MLP) Snapshot() []LayerWeights {
	s := make([]LayerWeights, len(m.Layers))
	for i, layer := range m.Layers {
		s[i] = layer.Snapshot()
	}
	return s
}

func (m *MLP) Check(s []LayerWeights) error {
	if len(s) != len(m.Layers) {
		return fmt.Errorf("%w: want %d layers, got %d", ErrShape, len(m.Layers), len(s))
	}
	for i, layer := range m.Layers {
		if err := layer.Check(s[i]); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return nil
}

// Restore validates every layer before writing any of them.
func (m *MLP) Restore(s []LayerWeights) error {
	if err := m.Check(s); err != nil {
		return err
	}
	for i, layer := range m.Layers {
		_ = layer.Restore(s[i])
	}
	return nil
}
