package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/specmodel/internal/export"
	"github.com/mvp-joe/specmodel/internal/model"
)

type toolHandler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// TypeSummary names one type of a package.
type TypeSummary struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// PackageResponse describes one package and its direct contents.
type PackageResponse struct {
	Name        string        `json:"name"`
	Path        string        `json:"path"`
	Types       []TypeSummary `json:"types"`
	Subpackages []string      `json:"subpackages"`
}

// RootClassSummary names one root class and its direct children.
type RootClassSummary struct {
	Name     string   `json:"name"`
	Package  string   `json:"package"`
	Children []string `json:"children"`
}

// AncestryResponse is the parent chain of a class, nearest first, and its
// direct children.
type AncestryResponse struct {
	Name      string   `json:"name"`
	Ancestors []string `json:"ancestors"`
	Children  []string `json:"children"`
}

// DiagnosticsResponse lists the warnings of the last successful load.
type DiagnosticsResponse struct {
	Count    int      `json:"count"`
	Warnings []string `json:"warnings"`
}

// AddModelTools registers the model query tools with an MCP server.
func AddModelTools(s *server.MCPServer, store *ModelStore) {
	readOnly := []mcp.ToolOption{
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	}

	s.AddTool(mcp.NewTool("specmodel_get_package", append([]mcp.ToolOption{
		mcp.WithDescription("Look up a package by its full path (e.g. 'M2::AUTOSARTemplates::GenericStructure') or a top-level name. Returns its types and subpackages. Without a path, lists the top-level packages."),
		mcp.WithString("path", mcp.Description("Full package path or top-level package name")),
	}, readOnly...)...), getPackageHandler(store))

	s.AddTool(mcp.NewTool("specmodel_get_type", append([]mcp.ToolOption{
		mcp.WithDescription("Get the full definition of a class, enumeration or primitive: note, bases, resolved parent and children, attributes, literals and source locations."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Type name")),
		mcp.WithString("package", mcp.Description("Restrict the lookup to this package path")),
	}, readOnly...)...), getTypeHandler(store))

	s.AddTool(mcp.NewTool("specmodel_list_root_classes", append([]mcp.ToolOption{
		mcp.WithDescription("List the root classes of the model (classes without a resolved parent) with their direct children."),
	}, readOnly...)...), listRootClassesHandler(store))

	s.AddTool(mcp.NewTool("specmodel_get_root_class", append([]mcp.ToolOption{
		mcp.WithDescription("Get the full definition of a root class."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Root class name")),
	}, readOnly...)...), getRootClassHandler(store))

	s.AddTool(mcp.NewTool("specmodel_get_ancestry", append([]mcp.ToolOption{
		mcp.WithDescription("Get the resolved parent chain of a class, nearest parent first, and its direct children."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Class name")),
	}, readOnly...)...), getAncestryHandler(store))

	s.AddTool(mcp.NewTool("specmodel_list_diagnostics", append([]mcp.ToolOption{
		mcp.WithDescription("List the extraction warnings, such as base classes that are referenced but never defined."),
	}, readOnly...)...), listDiagnosticsHandler(store))

	s.AddTool(mcp.NewTool("specmodel_status", append([]mcp.ToolOption{
		mcp.WithDescription("Report the model in service: its source, type and warning counts, and the outcome of the last reload."),
	}, readOnly...)...), statusHandler(store))
}

// withModel wraps a handler body with argument parsing and model lookup.
func withModel(store *ModelStore, fn func(args map[string]interface{}, doc *model.Document, diags []string) (*mcp.CallToolResult, error)) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, errResult := parseToolArguments(request)
		if errResult != nil {
			return errResult, nil
		}
		doc, diags, err := store.Current()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return fn(args, doc, diags)
	}
}

func getPackageHandler(store *ModelStore) toolHandler {
	return withModel(store, func(args map[string]interface{}, doc *model.Document, _ []string) (*mcp.CallToolResult, error) {
		path, _ := args["path"].(string)
		if path == "" {
			var out []PackageResponse
			for _, top := range doc.Packages {
				out = append(out, packageResponse(top))
			}
			return marshalToolResponse(out)
		}
		pkg, ok := doc.GetPackage(path)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("package not found: %s", path)), nil
		}
		return marshalToolResponse(packageResponse(pkg))
	})
}

func packageResponse(p *model.Package) PackageResponse {
	resp := PackageResponse{Name: p.Name, Path: p.Path, Types: []TypeSummary{}, Subpackages: []string{}}
	for _, t := range p.Types {
		resp.Types = append(resp.Types, TypeSummary{Kind: string(t.Kind()), Name: t.Info().Name})
	}
	for _, sub := range p.Subpackages {
		resp.Subpackages = append(resp.Subpackages, sub.Path)
	}
	return resp
}

func getTypeHandler(store *ModelStore) toolHandler {
	return withModel(store, func(args map[string]interface{}, doc *model.Document, _ []string) (*mcp.CallToolResult, error) {
		name, errResult := requiredString(args, "name")
		if errResult != nil {
			return errResult, nil
		}
		pkgPath, _ := args["package"].(string)

		types := doc.Types()
		if pkgPath != "" {
			pkg, ok := doc.GetPackage(pkgPath)
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("package not found: %s", pkgPath)), nil
			}
			types = pkg.Types
		}
		for _, t := range types {
			if t.Info().Name == name {
				return marshalToolResponse(export.NewTypeRecord(t))
			}
		}
		return mcp.NewToolResultError(fmt.Sprintf("type not found: %s", name)), nil
	})
}

func listRootClassesHandler(store *ModelStore) toolHandler {
	return withModel(store, func(_ map[string]interface{}, doc *model.Document, _ []string) (*mcp.CallToolResult, error) {
		out := []RootClassSummary{}
		for _, c := range doc.RootClasses {
			children := c.Children
			if children == nil {
				children = []string{}
			}
			out = append(out, RootClassSummary{Name: c.Name, Package: c.PackagePath, Children: children})
		}
		return marshalToolResponse(out)
	})
}

func getRootClassHandler(store *ModelStore) toolHandler {
	return withModel(store, func(args map[string]interface{}, doc *model.Document, _ []string) (*mcp.CallToolResult, error) {
		name, errResult := requiredString(args, "name")
		if errResult != nil {
			return errResult, nil
		}
		c, ok := doc.GetRootClass(name)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("root class not found: %s", name)), nil
		}
		return marshalToolResponse(export.NewTypeRecord(c))
	})
}

func getAncestryHandler(store *ModelStore) toolHandler {
	return withModel(store, func(args map[string]interface{}, doc *model.Document, _ []string) (*mcp.CallToolResult, error) {
		name, errResult := requiredString(args, "name")
		if errResult != nil {
			return errResult, nil
		}
		c, ok := doc.Class(name)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("class not found: %s", name)), nil
		}

		resp := AncestryResponse{Name: c.Name, Ancestors: []string{}, Children: c.Children}
		if resp.Children == nil {
			resp.Children = []string{}
		}
		seen := map[string]bool{c.Name: true}
		for parent := c.Parent; parent != "" && !seen[parent]; {
			seen[parent] = true
			resp.Ancestors = append(resp.Ancestors, parent)
			next, ok := doc.Class(parent)
			if !ok {
				break
			}
			parent = next.Parent
		}
		return marshalToolResponse(resp)
	})
}

func listDiagnosticsHandler(store *ModelStore) toolHandler {
	return withModel(store, func(_ map[string]interface{}, _ *model.Document, diags []string) (*mcp.CallToolResult, error) {
		warnings := diags
		if warnings == nil {
			warnings = []string{}
		}
		return marshalToolResponse(DiagnosticsResponse{Count: len(warnings), Warnings: warnings})
	})
}

func statusHandler(store *ModelStore) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return marshalToolResponse(store.Status())
	}
}
