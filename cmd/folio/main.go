package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/AtRiskMedia/folio-go/internal/application/sitemap"
	"github.com/AtRiskMedia/folio-go/internal/application/startup"
	"github.com/AtRiskMedia/folio-go/internal/infrastructure/content"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Serve a literary portfolio with per-visitor engagement",
	Long: `folio serves published works with a like, comment and share widget.

Each visitor's engagement is kept in their own storage area, either in the
server database (FOLIO_WIDGET_HOST=server) or in the browser (wasm).`,
	SilenceUsage: true,
}

// serveCmd runs the HTTP server until interrupted
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := startup.Initialize(); err != nil {
			return fmt.Errorf("application startup failed: %w", err)
		}
		log.Println("Application has shut down gracefully.")
		return nil
	},
}

var (
	sitemapRoot    string
	sitemapBaseURL string
	sitemapOut     string
	sitemapContent string
)

// sitemapCmd writes sitemap.xml for a built site
var sitemapCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Generate sitemap.xml from an output directory",
	Long: `Walk --root for .html files and write a sitemap of their URLs under
--base-url. index.html maps to its directory URL and lastmod is the file's
modification date. With --content, published works are included as well.`,
	RunE: runSitemap,
}

func init() {
	sitemapCmd.Flags().StringVar(&sitemapRoot, "root", "public", "Directory of rendered pages")
	sitemapCmd.Flags().StringVar(&sitemapBaseURL, "base-url", "", "Site URL the pages are served under")
	sitemapCmd.Flags().StringVar(&sitemapOut, "out", "", "Output file (default: <root>/sitemap.xml)")
	sitemapCmd.Flags().StringVar(&sitemapContent, "content", "", "Works directory to include")
	_ = sitemapCmd.MarkFlagRequired("base-url")

	rootCmd.AddCommand(serveCmd, sitemapCmd)
}

func runSitemap(cmd *cobra.Command, args []string) error {
	out := sitemapOut
	if out == "" {
		out = filepath.Join(sitemapRoot, "sitemap.xml")
	}

	entries, err := sitemap.Walk(sitemapRoot, sitemapBaseURL)
	if err != nil {
		return err
	}

	if sitemapContent != "" {
		catalog := content.NewCatalog(sitemapContent, nil)
		if err := catalog.Reload(); err != nil {
			return err
		}
		works, err := sitemap.FromWorks(sitemapBaseURL, catalog.FindAll())
		if err != nil {
			return err
		}
		entries = sitemap.Merge(entries, works)
	}

	if err := sitemap.WriteFile(out, entries); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d URLs to %s\n", len(entries), out)
	return nil
}

func main() {
	if len(os.Args) == 1 {
		rootCmd.SetArgs([]string{"serve"})
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
