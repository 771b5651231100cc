package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/devconsole/modelbridge/core/converse"
	"github.com/devconsole/modelbridge/core/vendors"
	"github.com/devconsole/modelbridge/providers/chat"
	"github.com/devconsole/modelbridge/providers/chat/factory"
)

const promptLongDesc = `Send a prompt to a conversational model and print the reply.

The prompt is read from standard input:

  echo "Why is the sky blue?" | prompt --model claude-3-haiku-20240307

Every flag can also be set through the environment with the MODELBRIDGE_
prefix (MODELBRIDGE_VENDOR, MODELBRIDGE_MODEL, ...).`

const promptShortDesc = "Send a prompt to a conversational model"

type promptCommander struct {
	vendor      string
	model       string
	temperature float64
	maxTokens   int
	system      string
	stream      bool
	thinking    bool

	stdin  io.Reader
	stdout io.Writer
}

func newPromptCmd() *cobra.Command {
	cmder := &promptCommander{
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}

	cmd := &cobra.Command{
		Use:           "prompt",
		Short:         promptShortDesc,
		Long:          promptLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.vendor, "vendor", "v", string(vendors.Anthropic), "Vendor to dispatch to (anthropic, aws)")
	cmd.Flags().StringVarP(&cmder.model, "model", "m", "claude-3-5-haiku-20241022", "Canonical model name or vendor model id")
	cmd.Flags().Float64VarP(&cmder.temperature, "temperature", "t", 0, "Sampling temperature in [0,1]")
	cmd.Flags().IntVar(&cmder.maxTokens, "max-tokens", 0, "Maximum response tokens (provider default when 0)")
	cmd.Flags().StringVarP(&cmder.system, "system", "s", "", "System prompt")
	cmd.Flags().BoolVar(&cmder.stream, "stream", false, "Stream the reply as it is generated")
	cmd.Flags().BoolVar(&cmder.thinking, "thinking", false, "Enable extended reasoning on models that support it")

	return cmd
}

// bindFlags connects every flag to the MODELBRIDGE_* environment through
// viper, with flags taking precedence over the environment.
func bindFlags(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix("MODELBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var bindErr error
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if bindErr != nil {
			return
		}
		if err := v.BindPFlag(flag.Name, flag); err != nil {
			bindErr = err
			return
		}
		if !flag.Changed && v.IsSet(flag.Name) {
			if err := cmd.Flags().Set(flag.Name, v.GetString(flag.Name)); err != nil {
				bindErr = fmt.Errorf("applying %s from environment: %w", flag.Name, err)
			}
		}
	})
	return bindErr
}

func (c *promptCommander) run(cmd *cobra.Command) error {
	vendor, err := vendors.Parse(c.vendor)
	if err != nil {
		return err
	}

	promptText, err := c.readPrompt()
	if err != nil {
		return err
	}

	request := &converse.Request{
		ModelID: c.model,
		System:  c.system,
		Messages: []converse.Message{
			{Role: converse.RoleUser, Content: []converse.ContentBlock{converse.TextBlock(promptText)}},
		},
		ThinkingEnabled: c.thinking,
	}

	inference := &converse.InferenceConfig{}
	if cmd.Flags().Changed("temperature") {
		inference.Temperature = &c.temperature
	}
	if c.maxTokens > 0 {
		inference.MaxTokens = &c.maxTokens
	}
	if inference.Temperature != nil || inference.MaxTokens != nil {
		request.Inference = inference
	}

	client, err := factory.NewModelClient(vendor)
	if err != nil {
		return err
	}

	if c.stream {
		return c.streamReply(cmd, client, request)
	}
	return c.printReply(cmd, client, request)
}

func (c *promptCommander) readPrompt() (string, error) {
	raw, err := io.ReadAll(c.stdin)
	if err != nil {
		return "", fmt.Errorf("reading prompt from stdin: %w", err)
	}
	promptText := strings.TrimSpace(string(raw))
	if promptText == "" {
		return "", fmt.Errorf("empty prompt on stdin")
	}
	return promptText, nil
}

func (c *promptCommander) printReply(cmd *cobra.Command, client chat.ModelClient, request *converse.Request) error {
	response, err := client.Converse(cmd.Context(), request)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, response.FirstText())
	return nil
}

func (c *promptCommander) streamReply(cmd *cobra.Command, client chat.ModelClient, request *converse.Request) error {
	stream, err := client.ConverseStream(cmd.Context(), request)
	if err != nil {
		return err
	}

	for fragment, iterErr := range stream.Iter() {
		if iterErr != nil {
			return iterErr
		}
		fmt.Fprint(c.stdout, fragment)
	}
	fmt.Fprintln(c.stdout)
	return nil
}
