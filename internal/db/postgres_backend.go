package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/lib/pq" // PostgreSQL driver

	"portalbot/internal/logger"
)

// PostgresBackend хранит документ одной строкой JSONB в таблице bot_documents.
// PostgresBackend stores the document as a single JSONB row in bot_documents.
type PostgresBackend struct {
	db  *sql.DB
	key string
}

// NewPostgresBackend подключается к базе, проверяет соединение и создает таблицу.
func NewPostgresBackend(ctx context.Context, dbURL, key string) (*PostgresBackend, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL не установлена")
	}
	if key == "" {
		return nil, fmt.Errorf("ключ документа не указан")
	}

	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга DATABASE_URL: %w", err)
	}
	query := parsedURL.Query()
	if query.Get("sslmode") == "" {
		// Пример: query.Set("sslmode", "require")
		query.Set("sslmode", "prefer")
	}
	parsedURL.RawQuery = query.Encode()

	conn, err := sql.Open("postgres", parsedURL.String())
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	// Пишет один процесс, большой пул не нужен.
	conn.SetMaxOpenConns(5)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ошибка проверки соединения с базой данных: %w", err)
	}
	logger.Get().Infof("Успешное подключение к базе данных %s.", parsedURL.Host)

	createTableSQL := `
        CREATE TABLE IF NOT EXISTS bot_documents (
            key TEXT PRIMARY KEY,
            body JSONB NOT NULL,
            updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
        );`
	if _, err := conn.ExecContext(ctx, createTableSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ошибка создания таблицы bot_documents: %s", describePQError(err))
	}

	return &PostgresBackend{db: conn, key: key}, nil
}

func (b *PostgresBackend) Read(ctx context.Context) ([]byte, error) {
	var body []byte
	err := b.db.QueryRowContext(ctx, "SELECT body FROM bot_documents WHERE key = $1", b.key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("чтение документа %q: %s", b.key, describePQError(err))
	}
	return body, nil
}

// Write выполняет upsert в транзакции. Строка блокируется на время записи,
// так что параллельный Read увидит либо старую, либо новую версию.
func (b *PostgresBackend) Write(ctx context.Context, data []byte) (err error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer func() {
		if err != nil {
			if errRb := tx.Rollback(); errRb != nil && !errors.Is(errRb, sql.ErrTxDone) {
				logger.Get().Warnf("PostgresBackend.Write: ошибка отката транзакции: %v", errRb)
			}
		}
	}()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO bot_documents (key, body, updated_at)
        VALUES ($1, $2::jsonb, NOW())
        ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`,
		b.key, string(data))
	if err != nil {
		return fmt.Errorf("запись документа %q: %s", b.key, describePQError(err))
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("ошибка коммита транзакции: %w", err)
	}
	return nil
}

// Close закрывает соединение с базой данных.
func (b *PostgresBackend) Close() error {
	if b.db == nil {
		return nil
	}
	logger.Get().Info("Соединение с базой данных закрыто.")
	return b.db.Close()
}

// describePQError добавляет SQLSTATE к тексту ошибки драйвера.
func describePQError(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Sprintf("%s (SQLSTATE %s)", pqErr.Message, pqErr.Code)
	}
	return err.Error()
}
