package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dayflow/dayflow/models"
)

func intPtr(v int) *int { return &v }

func TestFocusMinutesPrefersElapsedTime(t *testing.T) {
	cases := []struct {
		name    string
		session models.Pomodoro
		want    int
	}{
		{"no elapsed reported uses planned", models.Pomodoro{Duration: 25}, 25},
		{"full session", models.Pomodoro{Duration: 25, ActualDuration: intPtr(1500)}, 25},
		{"cut short", models.Pomodoro{Duration: 25, ActualDuration: intPtr(900)}, 15},
		{"partial minute floors", models.Pomodoro{Duration: 25, ActualDuration: intPtr(1499)}, 24},
		{"ran over", models.Pomodoro{Duration: 25, ActualDuration: intPtr(3660)}, 61},
		{"abandoned immediately", models.Pomodoro{Duration: 25, ActualDuration: intPtr(0)}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, focusMinutes(tc.session))
		})
	}
}
