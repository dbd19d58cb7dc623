package cmd

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/tools/go/packages"
)

var servicesDir string

// listServicesCmd represents the list-services command
var listServicesCmd = &cobra.Command{
	Use:   "list-services",
	Short: "Lists all services discoverable via the service registry",
	Long: `Scans the codebase for definitions of registry.Key[...] to find all services
that modules can resolve at runtime.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := findRegistryKeys(servicesDir, "./...")
		if err != nil {
			return fmt.Errorf("failed to find registry keys: %w", err)
		}
		if len(services) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No services found in the registry.")
			return nil
		}
		return printServices(cmd.OutOrStdout(), services)
	},
}

func init() {
	rootCmd.AddCommand(listServicesCmd)
	listServicesCmd.Flags().StringVar(&servicesDir, "dir", ".", "Module directory to scan")
}

type ServiceInfo struct {
	Key  string
	Type string
}

// findRegistryKeys loads the matching packages under dir and collects every
// package-level `X = registry.Key[T]("name")` definition.
func findRegistryKeys(dir string, patterns ...string) ([]ServiceInfo, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var services []ServiceInfo
	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			for _, decl := range file.Decls {
				genDecl, ok := decl.(*ast.GenDecl)
				if !ok || genDecl.Tok != token.VAR {
					continue
				}
				for _, spec := range genDecl.Specs {
					valueSpec, ok := spec.(*ast.ValueSpec)
					if !ok {
						continue
					}
					for _, value := range valueSpec.Values {
						if s, ok := registryKey(pkg.TypesInfo, value); ok {
							services = append(services, s)
						}
					}
				}
			}
		}
	}

	sort.Slice(services, func(i, j int) bool { return services[i].Key < services[j].Key })
	return services, nil
}

// registryKey matches a conversion to registry.Key with a string literal.
func registryKey(info *types.Info, expr ast.Expr) (ServiceInfo, bool) {
	call, ok := expr.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return ServiceInfo{}, false
	}

	// Key[T] parses as an IndexExpr, a multi-parameter key as an IndexListExpr.
	var typeArgs []ast.Expr
	switch fun := call.Fun.(type) {
	case *ast.IndexExpr:
		typeArgs = []ast.Expr{fun.Index}
	case *ast.IndexListExpr:
		typeArgs = fun.Indices
	default:
		return ServiceInfo{}, false
	}

	named, ok := info.TypeOf(call).(*types.Named)
	if !ok || named.Obj().Name() != "Key" || named.Obj().Pkg() == nil ||
		!strings.HasSuffix(named.Obj().Pkg().Path(), "internal/registry") {
		return ServiceInfo{}, false
	}

	lit, ok := call.Args[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return ServiceInfo{}, false
	}

	parts := make([]string, len(typeArgs))
	for i, arg := range typeArgs {
		parts[i] = types.ExprString(arg)
	}
	return ServiceInfo{Key: strings.Trim(lit.Value, "\"`"), Type: strings.Join(parts, ", ")}, true
}

func printServices(w io.Writer, services []ServiceInfo) error {
	fmt.Fprintln(w, "Available Services in the Registry:")
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "KEY\tTYPE")
	fmt.Fprintln(tw, "---\t----")
	for _, s := range services {
		fmt.Fprintf(tw, "%s\t%s\n", s.Key, s.Type)
	}
	return tw.Flush()
}
