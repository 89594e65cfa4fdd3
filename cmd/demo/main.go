package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/questforge/questforge/internal/core/character"
	"github.com/questforge/questforge/internal/core/combat"
	"github.com/questforge/questforge/internal/core/config"
	"github.com/questforge/questforge/internal/core/engine"
	"github.com/questforge/questforge/internal/core/entity"
	"github.com/questforge/questforge/internal/core/events/bus"
	"github.com/questforge/questforge/internal/core/observability/log"
	"github.com/questforge/questforge/internal/services/audio"
	"github.com/questforge/questforge/internal/services/data"
	"github.com/questforge/questforge/internal/services/input"
	"github.com/questforge/questforge/internal/web"
)

// duel swings at the defender on the attacker's cadence until one side dies.
type duel struct {
	entity.BaseComponent
	resolver *combat.Resolver
	attacker *character.Character
	defender *character.Character
	cooldown float64
}

func (d *duel) Update(delta float64) {
	if !d.attacker.Alive || !d.defender.Alive {
		return
	}
	d.cooldown -= delta
	if d.cooldown > 0 {
		return
	}
	d.cooldown = 1 / d.attacker.AttackSpeed
	d.resolver.PerformAttack(d.attacker, d.defender)
}

func main() {
	var (
		configPath = flag.String("config", "", "game config file (.json, .yaml)")
		webAddr    = flag.String("web", "", "serve the event viewer on this address (e.g. :8080)")
		saveDir    = flag.String("save-dir", "saves", "save slot directory")
	)
	flag.Parse()

	logger := log.New(log.LevelDebug)
	if err := run(logger, *configPath, *webAddr, *saveDir); err != nil {
		logger.Error("demo failed", log.Error(err))
		os.Exit(1)
	}
}

func run(logger log.Log, configPath, webAddr, saveDir string) error {
	engineCfg := engine.DefaultConfig()
	var gameCfg *config.GameConfig
	if configPath != "" {
		var err error
		gameCfg, err = config.LoadFile(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		engineCfg = gameCfg.Engine
		if gameCfg.SaveDir != "" {
			saveDir = gameCfg.SaveDir
		}
	}

	events := bus.New(logger)
	store := data.NewStore(saveDir, logger)
	speakers := audio.NewConsole(logger)
	eng := engine.New(engineCfg,
		engine.WithLogger(logger),
		engine.WithBus(events),
		engine.WithInput(input.NewState()),
		engine.WithAudio(speakers),
		engine.WithData(store),
	)

	hero, foe, err := cast(gameCfg, events)
	if err != nil {
		return err
	}

	resolver := combat.NewResolver(nil)
	hero.AddComponent("duel", &duel{resolver: resolver, attacker: hero, defender: foe})
	foe.AddComponent("duel", &duel{resolver: resolver, attacker: foe, defender: hero, cooldown: 0.5})

	arena := eng.CreateScene("arena")
	if err := arena.AddEntity(hero); err != nil {
		return err
	}
	if err := arena.AddEntity(foe); err != nil {
		return err
	}

	events.Subscribe(character.TopicDied, func(e bus.Event) error {
		fallen := e.Data.(character.DiedEvent).Character
		speakers.PlaySound("death-knell", false)
		victor := hero
		if fallen == hero {
			victor = foe
		}
		reward := combat.ExperienceReward(fallen, victor.Level)
		victor.AddExperience(reward)
		logger.Info("combat resolved",
			log.String("fallen", fallen.Name),
			log.String("victor", victor.Name),
			log.Int("reward", reward))
		store.Set("last_victor", victor.Name)
		store.Set("victor_level", victor.Level)
		_ = store.SaveSlot("autosave")
		return nil
	})
	events.Subscribe(character.TopicLevelUp, func(e bus.Event) error {
		lv := e.Data.(character.LevelUpEvent)
		speakers.PlaySound("fanfare", false)
		logger.Info("level up",
			log.String("character", lv.Character.Name),
			log.Int("new_level", lv.NewLevel))
		return nil
	})

	if err := eng.LoadScene("arena"); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)

	g, ctx := errgroup.WithContext(ctx)
	if webAddr != "" {
		viewer := web.NewServer(webAddr, events, logger, nil)
		g.Go(func() error { return viewer.Run(ctx) })
	}

	eng.Start()

	select {
	case <-stopCh:
	case <-ctx.Done():
	}
	eng.Stop()
	cancel()
	return g.Wait()
}

// cast builds the two duelists, from config when provided.
func cast(gameCfg *config.GameConfig, events bus.Bus) (*character.Character, *character.Character, error) {
	if gameCfg != nil && len(gameCfg.Characters) >= 2 {
		chars, err := gameCfg.BuildCharacters(events)
		if err != nil {
			return nil, nil, err
		}
		return chars[0], chars[1], nil
	}

	hero := character.New("hero", "Arden", events)
	hero.Attributes.Dexterity = 14
	hero.Attack = 12
	_, _ = hero.Equip(&character.Item{Name: "iron sword", Slot: character.SlotMainHand, AttackBonus: 5}, character.SlotMainHand)
	hero.AddTag("player")

	foe := character.New("foe", "Gravetusk", events)
	foe.Attributes.Dexterity = 9
	foe.MaxHealth = 140
	foe.Health = 140
	foe.Attack = 9
	foe.Defense = 7
	foe.AddTag("enemy")
	return hero, foe, nil
}
