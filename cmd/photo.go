package cmd

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mealpad/recipesync/internal/store/notion"
	"github.com/mealpad/recipesync/internal/vision"
)

func newPhotoCmd() *cobra.Command {
	var attachImages bool

	cmd := &cobra.Command{
		Use:   "photo <image files...>",
		Short: "Extract a recipe from one or more photos and sync it.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			visionClient, err := vision.NewClient(vision.Config{
				APIKey:   cfg.Vision.APIKey,
				Model:    cfg.Vision.Model,
				Language: cfg.Vision.Language,
			}, logger)
			if err != nil {
				return err
			}

			images := make([]vision.Image, 0, len(args))
			for _, path := range args {
				img, err := loadImage(path)
				if err != nil {
					return err
				}
				images = append(images, img)
			}

			parsed, err := visionClient.ExtractRecipe(cmd.Context(), images)
			if err != nil {
				return err
			}
			rec := parsed.Recipe()

			storeClient, err := notion.NewClient(notionConfig(), logger)
			if err != nil {
				return err
			}
			id, err := storeClient.Create(cmd.Context(), rec)
			if err != nil {
				return err
			}
			logger.Info("photo recipe synced",
				zap.String("recipe_id", id),
				zap.String("name", rec.Name),
			)

			if attachImages {
				for _, img := range images {
					dataURL := fmt.Sprintf("data:%s;base64,%s", img.MediaType, img.Base64Data)
					if err := storeClient.AttachImage(cmd.Context(), id, dataURL); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&attachImages, "attach-images", false, "embed the source photos in the created page")

	return cmd
}

func loadImage(path string) (vision.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return vision.Image{}, fmt.Errorf("read image %s: %w", path, err)
	}
	mediaType, err := imageMediaType(path)
	if err != nil {
		return vision.Image{}, err
	}
	return vision.Image{
		MediaType:  mediaType,
		Base64Data: base64.StdEncoding.EncodeToString(data),
	}, nil
}

func imageMediaType(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg", nil
	case ".png":
		return "image/png", nil
	case ".webp":
		return "image/webp", nil
	case ".gif":
		return "image/gif", nil
	default:
		return "", fmt.Errorf("unsupported image type: %s", path)
	}
}
