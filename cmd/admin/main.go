package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/karpix25/mini-karpix/internal/config"
	"github.com/karpix25/mini-karpix/internal/handlers"
	"github.com/karpix25/mini-karpix/internal/models"
	"github.com/karpix25/mini-karpix/internal/store"
)

func main() {
	createAdmin := flag.Bool("create-admin", false, "create an admin account and exit")
	username := flag.String("username", "", "admin username for -create-admin")
	password := flag.String("password", "", "admin password for -create-admin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := store.InitDB(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}
	store.SetDB(db)

	if *createAdmin {
		if *username == "" || *password == "" {
			log.Fatal("-create-admin requires -username and -password")
		}
		if err := seedAdmin(*username, *password); err != nil {
			log.Fatalf("failed to create admin: %v", err)
		}
		return
	}

	r := gin.Default()
	admin := &handlers.Admin{JWTSecret: cfg.Admin.JWTSecret}
	admin.RegisterRoutes(r)

	addr := fmt.Sprintf(":%d", cfg.Admin.Port)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// seedAdmin creates the account unless the username is already taken.
func seedAdmin(username, password string) error {
	db := store.GetDB()
	var count int64
	if err := db.Model(&models.Admin{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Printf("admin %q already exists, nothing to do", username)
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := db.Create(&models.Admin{Username: username, PasswordHash: string(hash)}).Error; err != nil {
		return err
	}
	log.Printf("admin %q created", username)
	return nil
}
