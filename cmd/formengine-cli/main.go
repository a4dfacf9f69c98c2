package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-formengine"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/schema/exprcond"
	"github.com/goliatone/go-formengine/pkg/validation"
)

func main() {
	schemaPath := flag.String("schema", "form.json", "form schema document (JSON or YAML)")
	valuesPath := flag.String("values", "", "optional JSON file with field values to validate")
	listSteps := flag.Bool("steps", false, "list the schema's steps and exit")
	flag.Parse()

	raw, err := os.ReadFile(*schemaPath)
	if err != nil {
		log.Fatalf("Failed to read schema: %v", err)
	}

	s, err := formengine.ParseSchema(raw)
	if err != nil {
		log.Fatalf("Invalid schema: %v", err)
	}

	engine, err := formengine.New(s, formengine.WithRuleCompiler(exprcond.New()))
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}
	defer engine.Close()

	if *listSteps {
		printSteps(engine)
		return
	}

	if *valuesPath != "" {
		if err := loadValues(engine, *valuesPath); err != nil {
			log.Fatalf("Failed to load values: %v", err)
		}
	}

	report(engine)
}

func printSteps(engine *formengine.Engine) {
	for _, step := range engine.Flow().Steps() {
		fmt.Printf("step %d: %s (%d fields)\n", step.Index, step.Title, len(step.Schema.FieldList))
	}
}

func loadValues(engine *formengine.Engine, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var snapshot schema.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return fmt.Errorf("decode values: %w", err)
	}
	engine.Store().SetBatch(snapshot)
	return nil
}

func report(engine *formengine.Engine) {
	result := engine.Validate(context.Background())
	printResult(result)

	visible := engine.Tracker().Visible()
	fmt.Println("visibility:")
	for _, field := range engine.Schema().Fields() {
		fmt.Printf("  %-20s %v\n", field.Name, visible[field.Name])
	}
}

func printResult(result validation.Result) {
	if result.Valid {
		fmt.Println("validation: ok")
		return
	}
	fmt.Println("validation: failed")
	for field, msgs := range result.Errors {
		for _, msg := range msgs {
			fmt.Printf("  %s: %s\n", field, msg)
		}
	}
}
