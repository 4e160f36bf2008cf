package postgres

import (
	"fmt"
	"strings"

	"github.com/jhoicas/packaging-ledger/internal/domain/repository"
)

// whereBuilder acumula condiciones con placeholders numerados; los valores nunca se interpolan.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereBuilder) add(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// compileFilter traduce los predicados tipados a SQL parametrizado sobre el alias t (transactions).
func compileFilter(f repository.TransactionFilter) (string, []any, error) {
	w := &whereBuilder{}
	for _, p := range f.Predicates {
		switch p := p.(type) {
		case repository.TypeIs:
			w.add("t.type = " + w.arg(string(p.Type)))
		case repository.StatusIs:
			w.add("t.status = " + w.arg(string(p.Status)))
		case repository.TouchesWarehouse:
			ph := w.arg(p.WarehouseID)
			w.add("(t.from_warehouse_id = " + ph + " OR t.to_warehouse_id = " + ph + ")")
		case repository.HasPackaging:
			w.add("EXISTS (SELECT 1 FROM transaction_items i WHERE i.transaction_id = t.id AND i.packaging_id = " + w.arg(p.PackagingID) + ")")
		case repository.DateBetween:
			if p.From != nil {
				w.add("t.transaction_date >= " + w.arg(*p.From))
			}
			if p.To != nil {
				w.add("t.transaction_date <= " + w.arg(*p.To))
			}
		default:
			return "", nil, fmt.Errorf("predicado no soportado: %T", p)
		}
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	query := w.sql() + " ORDER BY t.transaction_date DESC, t.created_at DESC" +
		" LIMIT " + w.arg(limit) + " OFFSET " + w.arg(f.Offset)
	return query, w.args, nil
}
