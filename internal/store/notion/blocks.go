package notion

import (
	"github.com/jomei/notionapi"

	"github.com/mealpad/recipesync/internal/recipe"
)

// contentBlocks renders the fixed page-body template: an "Ingredients"
// heading with one bullet per ingredient, an "Instructions" heading with one
// numbered item per step in original order, then a "Notes" section and a
// free-standing description paragraph, each only when non-empty.
func contentBlocks(r *recipe.Recipe) []notionapi.Block {
	blocks := []notionapi.Block{heading("Ingredients")}
	for _, ingredient := range r.Ingredients {
		blocks = append(blocks, bullet(ingredient))
	}
	blocks = append(blocks, heading("Instructions"))
	for _, step := range r.Instructions {
		blocks = append(blocks, numbered(step.Text))
	}
	if r.Notes != "" {
		blocks = append(blocks, heading("Notes"), paragraph(r.Notes))
	}
	if r.Description != "" {
		blocks = append(blocks, paragraph(r.Description))
	}
	return blocks
}

func heading(text string) notionapi.Block {
	return notionapi.Heading2Block{
		BasicBlock: basicBlock(notionapi.BlockTypeHeading2),
		Heading2: notionapi.Heading{
			RichText: richText(text),
		},
	}
}

func bullet(text string) notionapi.Block {
	return notionapi.BulletedListItemBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeBulletedListItem),
		BulletedListItem: notionapi.ListItem{
			RichText: richText(text),
		},
	}
}

func numbered(text string) notionapi.Block {
	return notionapi.NumberedListItemBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeNumberedListItem),
		NumberedListItem: notionapi.ListItem{
			RichText: richText(text),
		},
	}
}

func paragraph(text string) notionapi.Block {
	return notionapi.ParagraphBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeParagraph),
		Paragraph: notionapi.Paragraph{
			RichText: richText(text),
		},
	}
}

// imageBlock embeds a photo referenced by an inline base64 data URL.
func imageBlock(dataURL string) notionapi.Block {
	return notionapi.ImageBlock{
		BasicBlock: basicBlock(notionapi.BlockTypeImage),
		Image: notionapi.Image{
			Type: notionapi.FileTypeExternal,
			External: &notionapi.FileObject{
				URL: dataURL,
			},
		},
	}
}

func basicBlock(t notionapi.BlockType) notionapi.BasicBlock {
	return notionapi.BasicBlock{
		Object: notionapi.ObjectTypeBlock,
		Type:   t,
	}
}
