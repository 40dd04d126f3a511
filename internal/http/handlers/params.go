// Package handlers содержит общие для HTTP-обработчиков функции.
// Сами обработчики лежат во вложенных пакетах по ресурсам.
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
)

// ParseID читает положительный целочисленный параметр пути name.
func ParseID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", name, raw)
	}
	return id, nil
}
