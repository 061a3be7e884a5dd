package cartola

import (
	"sort"

	"github.com/vsconsulting/cartola-internacional/internal/models"
)

// dedupKey is the natural key identifying one logical transaction. Rows
// recovered twice (page-boundary overlap, repeated extraction artifacts)
// collide on this key with identical field values, so last write wins.
type dedupKey struct {
	titular string
	fecha   string
	desc    string
	pais    string
	monto   float64
	archivo string
}

func keyOf(r models.TransactionRecord) dedupKey {
	return dedupKey{
		titular: r.TitularNombre,
		fecha:   r.FechaOperacion,
		desc:    r.Descripcion,
		pais:    r.Pais,
		monto:   r.MontoOperacion,
		archivo: r.ArchivoOrigen,
	}
}

// deduplicate folds records by natural key, then orders the survivors by
// operation date and descending amount so callers see a stable order.
func deduplicate(records []models.TransactionRecord) []models.TransactionRecord {
	uniq := make(map[dedupKey]models.TransactionRecord, len(records))
	for _, r := range records {
		uniq[keyOf(r)] = r
	}

	out := make([]models.TransactionRecord, 0, len(uniq))
	for _, r := range uniq {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FechaOperacion != out[j].FechaOperacion {
			return out[i].FechaOperacion < out[j].FechaOperacion
		}
		if out[i].MontoTotal != out[j].MontoTotal {
			return out[i].MontoTotal > out[j].MontoTotal
		}
		return out[i].Descripcion < out[j].Descripcion
	})
	return out
}
