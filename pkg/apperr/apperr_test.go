package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", fmt.Errorf("score: %w", ErrValidation), http.StatusUnprocessableEntity},
		{"not found", fmt.Errorf("get pokemon: %w", ErrNotFound), http.StatusNotFound},
		{"conflict", fmt.Errorf("insert: %w", ErrConflict), http.StatusConflict},
		{"transport", fmt.Errorf("pokeapi: %w", ErrTransport), http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
