package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/packaging-ledger/internal/application/inventory"
	"github.com/jhoicas/packaging-ledger/internal/domain"
	"github.com/jhoicas/packaging-ledger/internal/domain/repository"
	"github.com/jhoicas/packaging-ledger/pkg/config"
	"github.com/jhoicas/packaging-ledger/pkg/logger"
)

// Ensure TxRunner implements inventory.TxRunner and inventory.SnapshotRunner.
var (
	_ inventory.TxRunner       = (*TxRunner)(nil)
	_ inventory.SnapshotRunner = (*TxRunner)(nil)
)

var tracer = otel.Tracer("github.com/jhoicas/packaging-ledger/internal/infrastructure/postgres")

// RetryPolicy reintentos acotados con backoff exponencial para la unidad de trabajo completa.
// Solo se reintentan errores con Retryable() == true.
type RetryPolicy struct {
	MaxAttempts int
	Initial     time.Duration
	Max         time.Duration
}

// RetryPolicyFromConfig construye la política desde la configuración del ledger.
func RetryPolicyFromConfig(cfg config.LedgerConfig) RetryPolicy {
	return RetryPolicy{MaxAttempts: cfg.RetryMaxAttempts, Initial: cfg.RetryInitial, Max: cfg.RetryMax}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.Initial > 0 {
		b.InitialInterval = p.Initial
	}
	if p.Max > 0 {
		b.MaxInterval = p.Max
	}
	b.MaxElapsedTime = 0
	retries := p.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

// Do ejecuta op con la política. Los errores no reintentables se devuelven de inmediato; una
// PersistenceError que agota los intentos sale marcada como Fatal.
func (p RetryPolicy) Do(ctx context.Context, log *logger.Logger, name string, op func() error) error {
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !domain.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		log.Debug().Err(err).Str("op", name).Int("attempt", attempt).Msg("operación abortada, reintentando")
		return err
	}, p.backOff(ctx))

	var perr *domain.PersistenceError
	if errors.As(err, &perr) && !perr.Fatal {
		perr.Fatal = true
		log.Warn().Err(err).Str("op", name).Int("attempts", attempt).Msg("reintentos agotados")
	}
	return err
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con lock_timeout acotado.
type TxRunner struct {
	db          Beginner
	lockTimeout time.Duration
	policy      RetryPolicy
	log         *logger.Logger
}

// NewTxRunner construye el runner. db suele ser el *pgxpool.Pool.
func NewTxRunner(db Beginner, lockTimeout time.Duration, policy RetryPolicy, log *logger.Logger) *TxRunner {
	return &TxRunner{db: db, lockTimeout: lockTimeout, policy: policy, log: log}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Ante un error reintentable (bloqueo, conflicto, falla de almacenamiento) repite la unidad completa
// según la política; los errores de negocio se devuelven de inmediato.
func (r *TxRunner) Run(ctx context.Context, fn func(
	inventoryRepo repository.InventoryRepository,
	ledger repository.TransactionLedger,
) error) error {
	return r.policy.Do(ctx, r.log, "unit of work", func() error {
		return r.runOnce(ctx, pgx.TxOptions{}, r.lockTimeout, "postgres.TxRunner.Run", fn)
	})
}

// ReadSnapshot ejecuta fn en una transacción REPEATABLE READ de solo lectura: todas las lecturas
// ven el mismo snapshot. Se reintenta con la misma política que Run.
func (r *TxRunner) ReadSnapshot(ctx context.Context, fn func(
	inventoryRepo repository.InventoryRepository,
	ledger repository.TransactionLedger,
) error) error {
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	return r.policy.Do(ctx, r.log, "read snapshot", func() error {
		return r.runOnce(ctx, opts, 0, "postgres.TxRunner.ReadSnapshot", fn)
	})
}

func (r *TxRunner) runOnce(ctx context.Context, opts pgx.TxOptions, lockTimeout time.Duration, spanName string, fn func(
	inventoryRepo repository.InventoryRepository,
	ledger repository.TransactionLedger,
) error) error {
	ctx, span := tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.Int64("db.lock_timeout_ms", lockTimeout.Milliseconds()),
		attribute.String("db.isolation", string(opts.IsoLevel)),
	))
	defer span.End()

	tx, err := r.db.BeginTx(ctx, opts)
	if err != nil {
		return classify("begin transaction", err, "", "")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if lockTimeout > 0 {
		// set_config con is_local=true equivale a SET LOCAL y admite parámetro.
		if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, fmt.Sprintf("%dms", lockTimeout.Milliseconds())); err != nil {
			return classify("set lock_timeout", err, "", "")
		}
	}

	if err := fn(NewInventoryRepository(tx), NewTransactionLedgerRepository(tx)); err != nil {
		span.RecordError(err)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return classify("commit transaction", err, "", "")
	}
	return nil
}
