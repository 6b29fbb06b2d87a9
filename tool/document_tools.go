package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/docmesh/document"
)

// defaultOrganizeMaxTokens bounds a section group when the organize tool is
// invoked without an explicit budget.
const defaultOrganizeMaxTokens = 4096

type createDocumentArgs struct {
	DocID    string            `json:"doc_id" description:"Unique identifier for the document"`
	Metadata map[string]string `json:"metadata,omitempty" description:"Optional metadata key/value pairs for the document"`
}

type updateSectionArgs struct {
	DocID   string `json:"doc_id" description:"Identifier of the document to write to"`
	Title   string `json:"title" description:"Title of the section"`
	Content string `json:"content" description:"Content of the section"`
}

type organizeSectionsArgs struct {
	DocID     string `json:"doc_id" description:"Identifier of the document to organize"`
	MaxTokens *int   `json:"max_tokens" description:"Optional token budget per section group"`
}

type listDocumentsArgs struct{}

// DocumentTools returns the document management tools exposed to the agent
// runtime, in a stable order: create_document, update_section,
// organize_sections, list_documents.
//
// Every tool catches internal failures and returns a human-readable string;
// errors never cross the tool boundary. The agent runtime expects
// string/structured results, not exceptions.
func DocumentTools(writer *document.Writer, optFns ...func(o *FunctionToolOptions)) []Tool {
	return []Tool{
		NewCreateDocumentTool(writer, optFns...),
		NewUpdateSectionTool(writer, optFns...),
		NewOrganizeSectionsTool(writer, optFns...),
		NewListDocumentsTool(writer, optFns...),
	}
}

// NewCreateDocumentTool returns the create_document tool.
func NewCreateDocumentTool(writer *document.Writer, optFns ...func(o *FunctionToolOptions)) Tool {
	return NewFunctionToolFromStruct(
		"create_document",
		"Creates a new empty document with the given identifier",
		createDocumentArgs{},
		func(_ context.Context, args map[string]any) (any, error) {
			docID, _ := args["doc_id"].(string)
			metadata := stringMap(args["metadata"])
			if _, err := writer.Create(docID, func(o *document.CreateOptions) {
				o.Metadata = metadata
			}); err != nil {
				return fmt.Sprintf("Failed to create document: %v", err), nil
			}
			return fmt.Sprintf("Created document %s.", docID), nil
		},
		optFns...,
	)
}

// NewUpdateSectionTool returns the update_section tool.
func NewUpdateSectionTool(writer *document.Writer, optFns ...func(o *FunctionToolOptions)) Tool {
	return NewFunctionToolFromStruct(
		"update_section",
		"Updates or creates a section in a document, merging near-duplicate content",
		updateSectionArgs{},
		func(ctx context.Context, args map[string]any) (any, error) {
			docID, _ := args["doc_id"].(string)
			title, _ := args["title"].(string)
			content, _ := args["content"].(string)

			section, err := writer.UpdateSection(ctx, docID, title, content)
			if err != nil {
				return fmt.Sprintf("Failed to update section: %v", err), nil
			}
			return fmt.Sprintf("Updated section %q in document %s (section version %d).",
				section.Title, docID, section.Version), nil
		},
		optFns...,
	)
}

// NewOrganizeSectionsTool returns the organize_sections tool.
func NewOrganizeSectionsTool(writer *document.Writer, optFns ...func(o *FunctionToolOptions)) Tool {
	return NewFunctionToolFromStruct(
		"organize_sections",
		"Organizes document sections into groups that fit within token limits",
		organizeSectionsArgs{},
		func(_ context.Context, args map[string]any) (any, error) {
			docID, _ := args["doc_id"].(string)
			maxTokens := defaultOrganizeMaxTokens
			if v, ok := args["max_tokens"].(float64); ok && v > 0 {
				maxTokens = int(v)
			}

			groups, err := writer.OrganizeSections(docID, maxTokens)
			if err != nil {
				return fmt.Sprintf("Failed to organize sections: %v", err), nil
			}
			return groups, nil
		},
		optFns...,
	)
}

// stringMap extracts the string-valued entries of a JSON decoded object;
// non-string values are dropped.
func stringMap(v any) map[string]string {
	obj, ok := v.(map[string]any)
	if !ok || len(obj) == 0 {
		return nil
	}
	out := make(map[string]string, len(obj))
	for key, value := range obj {
		if s, ok := value.(string); ok {
			out[key] = s
		}
	}
	return out
}

// NewListDocumentsTool returns the list_documents tool.
func NewListDocumentsTool(writer *document.Writer, optFns ...func(o *FunctionToolOptions)) Tool {
	return NewFunctionToolFromStruct(
		"list_documents",
		"Lists all available documents with their metadata",
		listDocumentsArgs{},
		func(_ context.Context, args map[string]any) (any, error) {
			docs, err := writer.List()
			if err != nil {
				return fmt.Sprintf("Failed to list documents: %v", err), nil
			}
			return docs, nil
		},
		optFns...,
	)
}
