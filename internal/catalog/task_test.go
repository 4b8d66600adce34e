package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTasks_Valid(t *testing.T) {
	tasks := Tasks()
	require.NotEmpty(t, tasks)
	require.NoError(t, ValidateTasks(tasks))
}

func TestTasks_ReturnsCopy(t *testing.T) {
	a := Tasks()
	a[0].ID = "mutated"
	b := Tasks()
	assert.NotEqual(t, "mutated", b[0].ID)
}

func TestValidateTasks_DuplicateID(t *testing.T) {
	tasks := []Task{
		{ID: "x", Text: "a", Category: CategoryNotice},
		{ID: "x", Text: "b", Category: CategoryNotice},
	}
	assert.Error(t, ValidateTasks(tasks))
}

func TestTask_Validate(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
	}{
		{"empty id", Task{Text: "t", Category: CategoryNotice}, true},
		{"critical without verdict", Task{ID: "c", Critical: true, Category: CategoryAuth}, true},
		{"notice with verdict", Task{ID: "n", Category: CategoryNotice, Verdict: "nope"}, true},
		{"valid critical", Task{ID: "c", Critical: true, Category: CategoryAuth, Verdict: "v"}, false},
		{"valid notice", Task{ID: "n", Category: CategoryNotice}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPartition(t *testing.T) {
	critical, notice := Partition(Tasks())
	require.NotEmpty(t, critical)
	require.NotEmpty(t, notice)
	for _, c := range critical {
		assert.True(t, c.Critical)
		assert.NotEmpty(t, c.Verdict)
	}
	for _, n := range notice {
		assert.False(t, n.Critical)
		assert.Empty(t, n.Verdict)
	}
	assert.Len(t, Tasks(), len(critical)+len(notice))
}

func TestOptionByID(t *testing.T) {
	opt := OptionByID("opt-sec")
	require.NotNil(t, opt)
	assert.Equal(t, CategorySecurityInput, opt.VerdictCategory)
	require.NotNil(t, opt.Bias)
	assert.Equal(t, 50000, opt.Bias.CriticalGraceMs)

	assert.Nil(t, OptionByID("opt-missing"))
}
