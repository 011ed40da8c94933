package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aidar/activity-signup/internal/app"
	"github.com/aidar/activity-signup/internal/config"
)

func main() {
	// Загружаем конфигурацию из переменных окружения (и .env, если он есть)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Не удалось загрузить конфигурацию: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Не удалось создать приложение: %v", err)
	}

	// Подключаем хранилище, заполняем мероприятия, настраиваем роутинг
	ctx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	err = application.Initialize(ctx)
	cancelInit()
	if err != nil {
		log.Fatalf("Не удалось инициализировать приложение: %v", err)
	}

	// Настраиваем graceful shutdown для корректного завершения
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- application.Run()
	}()

	fmt.Printf("Сервер запущен на %s:%s (хранилище: %s)\n", cfg.Server.Host, cfg.Server.Port, cfg.Store.Driver)
	fmt.Println("Нажмите Ctrl+C для остановки")

	// Ожидаем сигнал прерывания или падение сервера
	select {
	case <-sigChan:
		fmt.Println("\nОстановка сервера...")
	case err := <-serverErr:
		if err != nil {
			log.Printf("Ошибка сервера: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Printf("Не удалось корректно остановить сервер: %v", err)
		cancel()
		os.Exit(1)
	}

	fmt.Println("Сервер остановлен")
}
