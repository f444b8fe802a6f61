// Package ui implements the interactive parts of the CLI using bubbletea's Elm architecture.
//
// The manifest wizard ([Wizard]) walks through the questions needed to create a sync manifest:
//  1. [ConfirmStep] : create a missing manifest? (y/N)
//  2. [ConventionStep] : choose how tracks are named
//  3. [LinkStep] : playlist link, empty to finish
//  4. [FolderStep] : create a folder for this playlist? (y/N)
//  5. [LocationStep] : download location, empty for the default
//
// Steps 3 to 5 repeat until an empty link is entered. Declining step 1 or quitting yields [shared.ErrUserDeclined].
//
// [Painter] renders engine progress updates with the package palette for the non-interactive commands.
package ui
