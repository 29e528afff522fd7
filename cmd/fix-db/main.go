package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/yourusername/exam-api/internal/config"
	"github.com/yourusername/exam-api/pkg/database"
)

var (
	forceVersion  = kingpin.Flag("force-version", "Force golang-migrate schema version (clears dirty state)").Default("-1").Int()
	fixAttempts   = kingpin.Flag("fix-attempts", "Reconcile attempts_used with the number of recorded attempts").Default("false").Bool()
	migrationsDir = kingpin.Flag("migrations-dir", "Directory with SQL migrations").Default("migrations").String()
	dbHost        = kingpin.Flag("db-host", "PostgreSQL host").Envar("DATABASE_HOST").Default("localhost").String()
	dbPort        = kingpin.Flag("db-port", "PostgreSQL port").Envar("DATABASE_PORT").Default("5432").String()
	dbUser        = kingpin.Flag("db-user", "PostgreSQL user").Envar("DATABASE_USER").Default("postgres").String()
	dbPassword    = kingpin.Flag("db-password", "PostgreSQL password").Envar("DATABASE_PASSWORD").String()
	dbName        = kingpin.Flag("db-name", "PostgreSQL database").Envar("DATABASE_DBNAME").Default("exam_db").String()
	dbSSLMode     = kingpin.Flag("db-sslmode", "PostgreSQL sslmode").Envar("DATABASE_SSLMODE").Default("disable").String()
)

func main() {
	// .env читаем до разбора флагов, чтобы Envar увидел значения
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Предупреждение: не удалось прочитать .env: %v", err)
	}

	kingpin.UsageTemplate(kingpin.CompactUsageTemplate).Version("0.1")
	kingpin.CommandLine.Help = "Exam API database maintenance: migration state and counter drift"
	kingpin.Parse()

	dbCfg := config.DatabaseConfig{
		Host:     *dbHost,
		Port:     *dbPort,
		User:     *dbUser,
		Password: *dbPassword,
		DBName:   *dbName,
		SSLMode:  *dbSSLMode,
	}

	db, err := sql.Open("postgres", dbCfg.PostgresConnectionString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}

	if *forceVersion >= 0 {
		color.Yellow("Forcing migration version to %d to clean dirty state...", *forceVersion)
		if err := database.ForceMigrationVersion(db, *migrationsDir, *forceVersion); err != nil {
			log.Fatalf("Failed to force version: %v", err)
		}
		color.Green("Dirty state cleaned. You can now run the app normally.")
	}

	version, dirty, err := database.MigrationStatus(db, *migrationsDir)
	if err != nil {
		log.Fatalf("Не удалось прочитать версию миграций: %v", err)
	}
	fmt.Printf("Schema version: %d (dirty: %t)\n", version, dirty)

	report, err := loadDrift(ctx, db)
	if err != nil {
		log.Fatalf("Не удалось построить отчет о расхождениях: %v", err)
	}
	renderDrift(os.Stdout, report)

	if !*fixAttempts {
		if len(report.Assignments) > 0 {
			color.Cyan("Run with --fix-attempts to reconcile assignment counters.")
		}
		return
	}

	fixed, err := fixAttemptDrift(ctx, db)
	if err != nil {
		log.Fatalf("Не удалось исправить счетчики попыток: %v", err)
	}
	color.Green("Reconciled attempts_used on %d assignment(s).", fixed)
}
