// Package cmd contains the gcctl cobra command tree.
package cmd
