package main

//go:generate swag init -g cmd/tracker/main.go -o docs

// @title           Epic Free Games Tracker API
// @version         0.1.0
// @description     Weekly Epic Games Store giveaway tracking, retail price enrichment, and savings analytics.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
