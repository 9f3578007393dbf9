package server

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/logdeck/logdeck/pkg/models"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fastjson"
)

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.LogIDs(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("can't list log ids")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, marshalStrings(ids))
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	logID := chi.URLParam(r, "logID")
	tables, err := s.store.TablesForLog(r.Context(), logID)
	if err != nil {
		log.Error().Err(err).Str("log_id", logID).Msg("can't list tables")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, marshalStrings(tables))
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "tableName")
	_, rows, err := s.store.Rows(r.Context(), table)
	if err != nil {
		if errors.Is(err, ErrUnknownTable) {
			writeError(w, http.StatusBadRequest, "invalid table name")
			return
		}
		log.Error().Err(err).Str("table", table).Msg("can't read rows")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, marshalRows(rows))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "tableName")
	cols, rows, err := s.store.Rows(r.Context(), table)
	if err != nil {
		if errors.Is(err, ErrUnknownTable) {
			writeError(w, http.StatusBadRequest, "invalid table name")
			return
		}
		log.Error().Err(err).Str("table", table).Msg("can't export rows")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", table+".csv"))
	if err := writeCSV(w, cols, rows); err != nil {
		// Headers are gone already; all we can do is log.
		log.Warn().Err(err).Str("table", table).Msg("csv export interrupted")
	}
}

func writeCSV(w http.ResponseWriter, cols []string, rows []models.Row) error {
	bw := bufio.NewWriter(w)
	for i, col := range cols {
		if i > 0 {
			if err := bw.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(escapeCSV(col)); err != nil {
			return err
		}
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	for _, row := range rows {
		for i, f := range row.Fields {
			if i > 0 {
				if err := bw.WriteByte(','); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(escapeCSV(csvCell(f.Value))); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// csvCell renders one value for CSV: NULL becomes an empty cell and real
// numbers keep their decimal point, matching the JSON wire format.
func csvCell(v models.Value) string {
	switch v.Kind {
	case models.KindNull:
		return ""
	case models.KindFloat:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return ""
		}
		return decimalToken(v.Num)
	default:
		return v.Str
	}
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n\r") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

func marshalStrings(items []string) []byte {
	var a fastjson.Arena
	arr := a.NewArray()
	for i, s := range items {
		arr.SetArrayItem(i, a.NewString(s))
	}
	return arr.MarshalTo(nil)
}

// marshalRows emits rows as a JSON array of objects, keeping column order
// and the integer / real distinction the client relies on.
func marshalRows(rows []models.Row) []byte {
	var a fastjson.Arena
	arr := a.NewArray()
	for i, row := range rows {
		obj := a.NewObject()
		for _, f := range row.Fields {
			obj.Set(f.Name, arenaValue(&a, f.Value))
		}
		arr.SetArrayItem(i, obj)
	}
	return arr.MarshalTo(nil)
}

func arenaValue(a *fastjson.Arena, v models.Value) *fastjson.Value {
	switch v.Kind {
	case models.KindNull:
		return a.NewNull()
	case models.KindInt:
		return a.NewNumberString(v.Str)
	case models.KindFloat:
		// NaN and infinities have no JSON representation.
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return a.NewNull()
		}
		return a.NewNumberString(decimalToken(v.Num))
	default:
		return a.NewString(v.Str)
	}
}

// decimalToken formats a REAL column value so it always carries a decimal
// point: a whole-valued 3.0 must reach the wire as "3.0", not "3".
func decimalToken(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Warn().Err(err).Msg("can't write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	var a fastjson.Arena
	obj := a.NewObject()
	obj.Set("error", a.NewString(msg))
	writeJSON(w, status, obj.MarshalTo(nil))
}
