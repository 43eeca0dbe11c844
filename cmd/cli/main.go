package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/amirasaad/pixflow/infra/initializer"
	"github.com/amirasaad/pixflow/infra/repository"
	"github.com/amirasaad/pixflow/pkg/config"
	"github.com/amirasaad/pixflow/pkg/domain"
	"github.com/amirasaad/pixflow/pkg/money"
	repoport "github.com/amirasaad/pixflow/pkg/repository"
	"github.com/fatih/color"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: cli <command> [arguments]")
		fmt.Println("Commands:")
		fmt.Println("  process                              run one scheduled-withdrawal batch pass")
		fmt.Println("  seed <account_id> <name> <balance>   create or update an account")
		os.Exit(1)
	}

	cfg, err := config.Load(".env")
	if err != nil {
		fail("Failed to load configuration:", err)
	}
	deps, err := initializer.Initialize(cfg)
	if err != nil {
		fail("Failed to initialize dependencies:", err)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "process":
		processed, err := deps.Processor.Run(ctx)
		if err != nil {
			fail("Batch pass failed:", err)
		}
		color.Green("Processed %d due withdrawal(s).", processed)

	case "seed":
		if len(os.Args) < 5 {
			fail("Usage: seed <account_id> <name> <balance>", nil)
		}
		balance, err := strconv.ParseFloat(os.Args[4], 64)
		if err != nil {
			fail("Invalid balance:", err)
		}
		cents := int64(math.Round(balance * 100))
		amount, err := money.FromCentsForBalance(cents)
		if err != nil {
			fail("Invalid balance:", err)
		}

		acc := domain.NewAccount(os.Args[2], os.Args[3], amount)
		uow := repository.NewUoW(deps.DB, deps.Clock)
		err = uow.Do(ctx, func(tx repoport.Tx) error {
			return tx.Accounts().Save(ctx, acc)
		})
		if err != nil {
			fail("Failed to save account:", err)
		}
		color.Green("Account %s seeded with balance %s.", acc.ID, acc.Balance)

	default:
		fail("Unknown command: "+os.Args[1], nil)
	}
}

func fail(msg string, err error) {
	if err != nil {
		color.Red("%s %v", msg, err)
	} else {
		color.Red("%s", msg)
	}
	os.Exit(1)
}
