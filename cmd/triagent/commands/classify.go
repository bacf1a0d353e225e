package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dsqlabs/triagent/internal/agents"
	"github.com/dsqlabs/triagent/internal/llm"
	"github.com/dsqlabs/triagent/pkg/config"
)

var (
	classifySender  string
	classifyContent string
	classifyProduct string
)

// ClassifyCmd classifies a single message from the command line.
var ClassifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a single message",
	Long: `Run one classification against the configured language-model
provider and print the structured result as JSON.`,
	Example: `  triagent classify \
    --sender jane.doe@example.com \
    --content "My invoice has a double charge for last month, please help."`,
	RunE: runClassify,
}

func init() {
	ClassifyCmd.Flags().StringVar(&classifySender, "sender", "", "Message sender (required)")
	ClassifyCmd.Flags().StringVar(&classifyContent, "content", "", "Message content (required)")
	ClassifyCmd.Flags().StringVar(&classifyProduct, "product", "", "Product context")
	_ = ClassifyCmd.MarkFlagRequired("sender")
	_ = ClassifyCmd.MarkFlagRequired("content")
}

func runClassify(cmd *cobra.Command, args []string) error {
	setupLogger(verbose, true)

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	client := llm.NewOpenAIClient(llm.OpenAIConfig{
		BaseURL:           cfg.LLM.BaseURL,
		APIKey:            cfg.LLM.APIKey,
		Timeout:           cfg.LLM.Timeout,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
	})

	exec := agents.NewExecutor(agents.NewClassifyAgent(client, nil, agents.ModelConfig{
		PrimaryModel:        cfg.LLM.PrimaryModel,
		FallbackModel:       cfg.LLM.FallbackModel,
		ConfidenceThreshold: cfg.Agents.ConfidenceThreshold,
		Temperature:         cfg.Agents.ClassifyTemperature,
		MaxTokens:           cfg.Agents.ClassifyMaxTokens,
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.LLM.Timeout+10*time.Second)
	defer cancel()

	in := &agents.Input{
		Sender:  classifySender,
		Content: classifyContent,
	}
	if classifyProduct != "" {
		in.Metadata = map[string]string{"product": classifyProduct}
	}

	out, err := exec.Execute(ctx, in)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
