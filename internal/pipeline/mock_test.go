package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/groupements-cli/internal/banatic"
	"github.com/sells-group/groupements-cli/internal/division"
	"github.com/sells-group/groupements-cli/internal/model"
	"github.com/sells-group/groupements-cli/internal/xref"
)

// --- Row source mock ---

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Fetch(ctx context.Context, divs []division.Division) ([]model.Row, error) {
	args := m.Called(ctx, divs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Row), args.Error(1)
}

func (m *mockSource) Stats() banatic.Stats {
	args := m.Called()
	return args.Get(0).(banatic.Stats)
}

// --- Sink mock ---

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Write(ctx context.Context, groupements []model.Groupement) error {
	args := m.Called(ctx, groupements)
	return args.Error(0)
}

// --- XRef loader mock ---

type mockXRef struct {
	mock.Mock
}

func (m *mockXRef) Load(ctx context.Context, path string) (xref.Mapping, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(xref.Mapping), args.Error(1)
}
