package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskSection(t *testing.T) {
	tests := []struct {
		name string
		task Task
		want Section
	}{
		{"active", Task{}, SectionActive},
		{"finished", Task{IsCompleted: true}, SectionFinished},
		{"archived unfinished", Task{IsArchived: true}, SectionArchived},
		{"archived finished", Task{IsArchived: true, IsCompleted: true}, SectionArchived},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.Section())
		})
	}
}

func TestValue(t *testing.T) {
	s := "x"
	assert.Equal(t, "x", Value(&s))
	assert.Equal(t, "", Value(nil))
}

func TestUserIsAdmin(t *testing.T) {
	var nobody *User
	assert.False(t, nobody.IsAdmin())
	assert.True(t, (&User{Role: "admin"}).IsAdmin())
	assert.False(t, (&User{Role: "user"}).IsAdmin())
}
