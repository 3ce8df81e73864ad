// Package main provides a command line front end for the resume analyzer.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume-analyzer",
	Short: "Analyze resumes against job categories",
	Long:  "Resume Analyzer scores a PDF, DOCX or plain text resume against a job category and reports strengths, missing keywords and suggestions.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
