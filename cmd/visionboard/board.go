package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"visionboard/internal/types"
)

// boardCmd groups the board item operations.
var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Manage vision board items",
}

var boardListCmd = &cobra.Command{
	Use:   "list",
	Short: "List board items",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		items := a.board.Items()
		if len(items) == 0 {
			fmt.Println("The board is empty.")
			return nil
		}
		for _, item := range items {
			printItem(item)
		}
		return nil
	},
}

var boardAddCmd = &cobra.Command{
	Use:   "add [vision|idea]",
	Short: "Add a vision statement or idea with placeholder content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var itemType types.ItemType
		switch strings.ToLower(args[0]) {
		case "vision":
			itemType = types.ItemVisionStatement
		case "idea":
			itemType = types.ItemIdea
		default:
			return fmt.Errorf("unknown item kind %q (want vision or idea)", args[0])
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		item, err := a.board.AddItem(itemType)
		if err != nil {
			return err
		}
		printItem(item)
		return nil
	},
}

var boardEditCmd = &cobra.Command{
	Use:   "edit [id] [text]",
	Short: "Replace the text of a statement or idea",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		item, ok := a.board.Get(args[0])
		if !ok {
			return fmt.Errorf("item %s not found", args[0])
		}
		if _, isText := item.Content.(types.TextContent); !isText {
			return fmt.Errorf("item %s has no editable text", args[0])
		}
		item.Content = types.TextContent{Text: args[1]}
		if err := a.board.UpdateItem(item); err != nil {
			return err
		}
		printItem(item)
		return nil
	},
}

var boardDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a board item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		a.board.DeleteItem(args[0])
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

var boardPriorityCmd = &cobra.Command{
	Use:   "priority [id] [none|mvp|future|parking-lot]",
	Short: "Set an item's priority",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var priority types.Priority
		switch strings.ToLower(args[1]) {
		case "none":
			priority = types.PriorityNone
		case "mvp":
			priority = types.PriorityMVP
		case "future":
			priority = types.PriorityFuture
		case "parking-lot", "parking_lot":
			priority = types.PriorityParkingLot
		default:
			return fmt.Errorf("unknown priority %q", args[1])
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		return a.board.SetPriority(args[0], priority)
	},
}

var boardConvertCmd = &cobra.Command{
	Use:   "convert [id]",
	Short: "Convert an idea into a user story",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		item, err := a.board.ConvertToStory(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printItem(item)
		return nil
	},
}

var boardCriteriaCmd = &cobra.Command{
	Use:   "criteria [id]",
	Short: "Generate acceptance criteria for a user story",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		item, err := a.board.AppendCriteria(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printItem(item)
		return nil
	},
}

var boardIdeasCmd = &cobra.Command{
	Use:   "ideas [topic]",
	Short: "Brainstorm ideas on a topic and add them to the board",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		created, err := a.board.GenerateIdeas(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		for _, item := range created {
			printItem(item)
		}
		return nil
	},
}

var boardSummarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Synthesize the board into a project vision summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.board.SummarizeVision(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(summary)
		return nil
	},
}

var visualizePrompt string

var boardVisualizeCmd = &cobra.Command{
	Use:   "visualize [id]",
	Short: "Generate an image item from a statement or idea",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		item, err := a.board.Visualize(cmd.Context(), args[0], visualizePrompt)
		if err != nil {
			return err
		}
		printItem(item)
		return nil
	},
}

var boardVisualizeAllCmd = &cobra.Command{
	Use:   "visualize-all",
	Short: "Visualize every idea that has no image yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		created, err := a.board.VisualizeAllIdeas(cmd.Context())
		if err != nil {
			return err
		}
		for _, item := range created {
			printItem(item)
		}
		return nil
	},
}

var boardStylesCmd = &cobra.Command{
	Use:   "styles [id]",
	Short: "Suggest art styles for visualizing an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		suggestions, err := a.board.StyleSuggestions(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, s := range suggestions {
			fmt.Printf("%s\n  %s\n", s.StyleName, s.PromptHint)
		}
		return nil
	},
}

var boardHaikuCmd = &cobra.Command{
	Use:   "haiku [image-id]",
	Short: "Write a haiku for an image item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		item, err := a.board.GenerateHaiku(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printItem(item)
		return nil
	},
}

var inferGenre string

var boardInferStoryCmd = &cobra.Command{
	Use:   "infer-story [image-id]",
	Short: "Invent a user story from an image's summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		item, err := a.board.StoryFromInference(cmd.Context(), args[0], inferGenre)
		if err != nil {
			return err
		}
		printItem(item)
		return nil
	},
}

func init() {
	boardVisualizeCmd.Flags().StringVar(&visualizePrompt, "prompt", "", "Override the item text as the image prompt")
	boardInferStoryCmd.Flags().StringVar(&inferGenre, "genre", "sci-fi", "Genre for the inferred story")

	boardCmd.AddCommand(boardListCmd)
	boardCmd.AddCommand(boardAddCmd)
	boardCmd.AddCommand(boardEditCmd)
	boardCmd.AddCommand(boardDeleteCmd)
	boardCmd.AddCommand(boardPriorityCmd)
	boardCmd.AddCommand(boardConvertCmd)
	boardCmd.AddCommand(boardCriteriaCmd)
	boardCmd.AddCommand(boardIdeasCmd)
	boardCmd.AddCommand(boardSummarizeCmd)
	boardCmd.AddCommand(boardVisualizeCmd)
	boardCmd.AddCommand(boardVisualizeAllCmd)
	boardCmd.AddCommand(boardStylesCmd)
	boardCmd.AddCommand(boardHaikuCmd)
	boardCmd.AddCommand(boardInferStoryCmd)
}

// printItem renders one item for the terminal.
func printItem(item types.VisionItem) {
	fmt.Printf("%s  [%s] priority=%s\n", item.ID, item.Type, item.Priority)
	switch c := item.Content.(type) {
	case types.TextContent:
		fmt.Printf("    %s\n", c.Text)
	case types.UserStory:
		fmt.Printf("    %s\n", c.Sentence())
	case types.VisionImage:
		fmt.Printf("    prompt: %s\n", c.Prompt)
		fmt.Printf("    summary: %s\n", c.Summary)
		if c.Haiku != "" {
			fmt.Printf("    haiku: %s\n", strings.ReplaceAll(c.Haiku, "\n", " / "))
		}
		fmt.Printf("    image: %d bytes (data URI)\n", len(c.ImageURL))
		if item.SourceItemID != "" {
			fmt.Printf("    source: %s\n", item.SourceItemID)
		}
	}
	if item.SourceImageID != "" {
		fmt.Printf("    inferred from image: %s\n", item.SourceImageID)
	}
	for _, ac := range item.AcceptanceCriteria {
		fmt.Printf("    - %s\n", ac)
	}
}
