package storage

import (
	"backend/models"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

var db *sql.DB

func InitDB() *sql.DB {
	if err := godotenv.Load(); err != nil {
		log.Fatal("Error loading .env file")
	}
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")

	connStr := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%s sslmode=disable",
		user, password, dbname, host, port)

	var err error
	db, err = sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Pool sized for a small sales team; this console never sees heavy load
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	return db
}

func GetDB() *sql.DB {
	return db
}

// SaveSession inserts a new session row for a user. Sessions are issued at
// login and removed at logout or by the daily cleanup job; there is no silent
// renewal.
func SaveSession(db *sql.DB, session *models.Session) error {
	insertQuery := `INSERT INTO session (user_id, session_id, host_name, ip_address, timestp, expires_at)
                    VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := db.Exec(insertQuery, session.UserID, session.SessionID, session.HostName, session.IPAddress, session.Timestamp, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert new session: %v", err)
	}
	return nil
}

func DeleteSessionByID(db *sql.DB, sessionID string) error {
	result, err := db.Exec(`DELETE FROM session WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %v", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("session not found or already deleted")
	}

	return nil
}

func CleanupExpiredSessions(db *sql.DB) error {
	_, err := db.Exec("DELETE FROM session WHERE expires_at < NOW()")
	return err
}

// GetUserByUsername looks up a console user in usuarios_admin. The caller is
// responsible for the bcrypt comparison; the stored password is a hash.
func GetUserByUsername(db *sql.DB, username string) (*models.SalesUser, error) {
	var user models.SalesUser
	query := `SELECT id, username, password, nombre, vendedor_id, activo, created_at
	          FROM usuarios_admin WHERE LOWER(username) = LOWER($1)`

	err := db.QueryRow(query, username).Scan(&user.ID, &user.Username, &user.Password,
		&user.Nombre, &user.VendedorID, &user.Activo, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user %s not found", username)
		}
		return nil, fmt.Errorf("failed to query user: %v", err)
	}

	return &user, nil
}

// GetUserBySessionID resolves the salesperson identity behind a session
// header. Inactive accounts are treated the same as missing sessions so a
// deactivated user is locked out immediately.
func GetUserBySessionID(db *sql.DB, sessionID string) (*models.SalesUser, error) {
	query := `
		SELECT u.id, u.username, u.nombre, u.vendedor_id, u.activo, u.created_at
		FROM session s
		JOIN usuarios_admin u ON s.user_id = u.id
		WHERE s.session_id = $1 AND s.expires_at > NOW()
	`

	var user models.SalesUser
	err := db.QueryRow(query, sessionID).Scan(
		&user.ID, &user.Username, &user.Nombre,
		&user.VendedorID, &user.Activo, &user.CreatedAt,
	)
	if err != nil || !user.Activo {
		if err == sql.ErrNoRows || (err == nil && !user.Activo) {
			return nil, errors.New("session not found, expired, or account inactive")
		}
		return nil, err
	}

	return &user, nil
}
