package workflow_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/meteo/pkg/workflow"
)

var commands = []string{"prepare", "prepare-data"}

func TestLoad_RepositoryManifest(t *testing.T) {
	wf, err := workflow.Load(filepath.Join("..", "..", workflow.DefaultPath))
	gt.NoError(t, err)
	gt.True(t, wf.On.Dispatch)
	gt.Equal(t, len(wf.On.Schedules), 1)
	gt.Equal(t, wf.On.Schedules[0].Cron, "0 2 * * *")
	gt.NoError(t, wf.Validate(commands))
}

func TestParse_TriggerForms(t *testing.T) {
	t.Run("scalar", func(t *testing.T) {
		wf, err := workflow.Parse([]byte("on: workflow_dispatch\n"))
		gt.NoError(t, err)
		gt.True(t, wf.On.Dispatch)
	})

	t.Run("list", func(t *testing.T) {
		wf, err := workflow.Parse([]byte("on: [push, workflow_dispatch]\n"))
		gt.NoError(t, err)
		gt.True(t, wf.On.Dispatch)
		gt.Equal(t, wf.On.Others, []string{"push"})
	})
}

func TestParse_PermissionForms(t *testing.T) {
	t.Run("scalar", func(t *testing.T) {
		wf, err := workflow.Parse([]byte("permissions: write-all\n"))
		gt.NoError(t, err)
		gt.Equal(t, wf.Permissions.All, "write-all")
		gt.True(t, wf.Permissions.CanWrite("contents"))
	})

	t.Run("map", func(t *testing.T) {
		wf, err := workflow.Parse([]byte("permissions:\n  contents: write\n  issues: read\n"))
		gt.NoError(t, err)
		gt.True(t, wf.Permissions.CanWrite("contents"))
		gt.False(t, wf.Permissions.CanWrite("issues"))
	})

	t.Run("list is rejected", func(t *testing.T) {
		_, err := workflow.Parse([]byte("permissions: [contents]\n"))
		gt.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	testCases := map[string]struct {
		manifest string
		want     error
	}{
		"valid schedule only": {
			manifest: `
on:
  schedule:
    - cron: "30 3 * * 1"
jobs:
  prepare:
    permissions:
      contents: write
    steps:
      - run: |
          go build -o meteo .
          ./meteo prepare-data
`,
		},
		"no trigger": {
			manifest: `
on:
  push:
permissions:
  contents: write
jobs:
  prepare:
    steps:
      - run: go run . prepare
`,
			want: workflow.ErrNoTrigger,
		},
		"invalid cron": {
			manifest: `
on:
  schedule:
    - cron: "every night"
permissions:
  contents: write
jobs:
  prepare:
    steps:
      - run: go run . prepare
`,
			want: workflow.ErrInvalidCron,
		},
		"write-all": {
			manifest: `
on: workflow_dispatch
permissions: write-all
jobs:
  prepare:
    steps:
      - run: go run . prepare
`,
		},
		"read-all": {
			manifest: `
on: workflow_dispatch
permissions: read-all
jobs:
  prepare:
    steps:
      - run: go run . prepare
`,
			want: workflow.ErrMissingWrite,
		},
		"cron descriptor": {
			manifest: `
on:
  schedule:
    - cron: "@daily"
permissions:
  contents: write
jobs:
  prepare:
    steps:
      - run: go run . prepare
`,
			want: workflow.ErrInvalidCron,
		},
		"cron with time zone": {
			manifest: `
on:
  schedule:
    - cron: "TZ=Europe/Paris 0 2 * * *"
permissions:
  contents: write
jobs:
  prepare:
    steps:
      - run: go run . prepare
`,
			want: workflow.ErrInvalidCron,
		},
		"read only": {
			manifest: `
on:
  workflow_dispatch:
permissions:
  contents: read
jobs:
  prepare:
    steps:
      - run: go run . prepare
`,
			want: workflow.ErrMissingWrite,
		},
		"no steps": {
			manifest: `
on:
  workflow_dispatch:
permissions:
  contents: write
jobs:
  prepare:
    runs-on: ubuntu-latest
`,
			want: workflow.ErrNoStep,
		},
		"unrelated command": {
			manifest: `
on:
  workflow_dispatch:
permissions:
  contents: write
jobs:
  prepare:
    steps:
      - uses: actions/checkout@v4
      - run: go test ./...
`,
			want: workflow.ErrNoCommandStep,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			wf, err := workflow.Parse([]byte(tc.manifest))
			gt.NoError(t, err)

			err = wf.Validate(commands)
			if tc.want == nil {
				gt.NoError(t, err)
				return
			}
			gt.Error(t, err)
			gt.True(t, errors.Is(err, tc.want))
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := workflow.Load(filepath.Join(t.TempDir(), "missing.yml"))
	gt.Error(t, err)
	gt.True(t, errors.Is(err, os.ErrNotExist))
}
