package main

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/lib/pq"

	"github.com/gratefultolord/compliment_bot/internal/bot"
	"github.com/gratefultolord/compliment_bot/internal/config"
	"github.com/gratefultolord/compliment_bot/internal/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	database, err := db.New(cfg)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	defer database.Close()

	err = db.RunMigrations(database.Conn, "db_scripts/init.sql")
	if err != nil {
		log.Fatalf("Error running migrations: %v", err)
	}

	complimentRepo := db.NewComplimentRepository(database.Conn)

	if err := complimentRepo.SeedInitial(); err != nil {
		log.Fatalf("Error seeding compliments: %v", err)
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("Error creating telegram bot: %v", err)
	}

	botService := bot.New(botAPI, complimentRepo, cfg.AdminIDs)

	log.Printf("Bot started as @%s", botAPI.Self.UserName)

	botService.Start()
}
