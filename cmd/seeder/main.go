package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/padel-ladder/internal/database"
	"github.com/mauv0809/padel-ladder/internal/ladder"
	"github.com/mauv0809/padel-ladder/internal/league"
	"github.com/mauv0809/padel-ladder/internal/metrics"
	"github.com/mauv0809/padel-ladder/internal/notifier"
	"github.com/mauv0809/padel-ladder/internal/pubsub"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	config["DB_NAME"] = "ladder.db"
	for _, key := range []string{"DB_NAME", "TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"} {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	return config
}

var seedNames = []string{
	"Net Rushers", "Bandeja Bros", "Vibora Club", "Back Wall", "Smash Unit", "Golden Point",
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	ctx := context.Background()
	metricsSvc := metrics.NewService()
	quiet := notifier.NewRouter(nil, nil, metricsSvc)
	events, _ := pubsub.New("")
	ladderSvc := ladder.NewService(ladder.New(db), quiet, metricsSvc, events)

	for _, division := range []ladder.Division{ladder.DivisionMen, ladder.DivisionWomen, ladder.DivisionMixed} {
		for i, name := range seedNames {
			team, err := ladderSvc.RegisterTeam(ctx, ladder.TeamInput{
				Name:         fmt.Sprintf("%s (%s)", name, division),
				Division:     string(division),
				Player1Name:  fmt.Sprintf("Seeder Player %dA", i+1),
				Player1Email: fmt.Sprintf("%s.%d.a@example.com", division, i+1),
				Player2Name:  fmt.Sprintf("Seeder Player %dB", i+1),
			})
			if err != nil {
				log.Fatalf("Failed to seed team %s: %s", name, err)
			}
			if _, err := ladderSvc.SetPaymentReceived(ctx, team.ID, i%2 == 0); err != nil {
				log.Fatalf("Failed to mark payment for %s: %s", team.Name, err)
			}
			log.Info("Seeded ladder team", "team", team.Name, "rank", team.Rank, "token", team.AccessToken)
		}
	}

	leagueSvc := league.NewService(league.New(db), quiet, seasonMonday())
	for _, name := range seedNames {
		player := strings.ToLower(strings.ReplaceAll(name, " ", "."))
		if _, err := leagueSvc.RegisterTeam(ctx, league.TeamInput{
			Name:         name,
			Player1Name:  name + " 1",
			Player1Email: player + ".1@example.com",
			Player2Name:  name + " 2",
		}); err != nil {
			log.Fatalf("Failed to seed league team %s: %s", name, err)
		}
	}
	log.Info("Seeding completed", "ladderTeams", 3*len(seedNames), "leagueTeams", len(seedNames))
}

func seasonMonday() time.Time {
	now := time.Now().UTC()
	monday := now.AddDate(0, 0, -((int(now.Weekday()) + 6) % 7))
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
}
