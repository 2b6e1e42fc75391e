package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. The CLI prints the code next to every failed operation so a
// user can quote it when asking for help.
//
// Error codes are grouped by category:
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key: A record with this key already exists
//	        Patterns: "duplicate key", "unique constraint"; SQLSTATE 23505
//
//	DB002 - Missing value: A required database value is missing
//	        Patterns: "not null constraint", "violates not-null"; SQLSTATE 23502
//
//	DB003 - Foreign key: Referenced record does not exist
//	        Patterns: "foreign key constraint"; SQLSTATE 23503
//
//	DB004 - Connection refused: Unable to connect to database
//	        Patterns: "connection refused"
//
//	DB005 - Connection reset: Database connection was interrupted
//	        Patterns: "connection reset"
//
//	DB006 - Busy: Database is locked by another program
//	        Patterns: "database is locked", "sqlite_busy", "deadlock"; SQLSTATE 40P01
//
//	DB007 - Schema missing: Database tables are missing
//	        Patterns: "no such table"; SQLSTATE 42P01
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid date            Patterns: "invalid date"
//	VAL002 - Invalid number          Patterns: "invalid number"
//	VAL003 - Required field empty    Patterns: "required field"
//	VAL004 - Missing column          Patterns: "missing required column"
//	VAL005 - Header not found        Patterns: "column not found"
//	VAL006 - Invalid enum            Patterns: "invalid enum"
//	VAL007 - Invalid yes/no value    Patterns: "invalid bool"
//	VAL008 - Duplicate lab ID        Patterns: "duplicate lab id"
//	VAL009 - Unexpected columns      Patterns: "unexpected columns", "duplicate columns"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File not found         Patterns: "no such file or directory", "cannot find the file"
//	FILE002 - Invalid CSV            Patterns: "invalid csv"
//	FILE003 - Unsupported file       Patterns: "unsupported file type"
//	FILE004 - Empty file             Patterns: "empty file"
//	FILE005 - No sequences           Patterns: "no sequences found"
//	FILE006 - Broken workbook        Patterns: "not a valid zip file"
//
// # Lab ID Errors (LAB001-LAB099)
//
//	LAB001 - Unknown lab ID          Patterns: "lab id not found"
//	LAB002 - Empty lab ID            Patterns: "lab id is empty"
//	LAB003 - Empty keyword           Patterns: "search keyword is empty"
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Column mismatch         Patterns: "columns do not match"
//	EXP002 - Unsupported format      Patterns: "unsupported export format"
//	EXP003 - Missing bucket          Patterns: "nosuchbucket"
//	EXP004 - Access denied           Patterns: "accessdenied", "permission denied"
//
// # Import History Errors (UPL001-UPL099)
//
//	UPL001 - Unknown import          Patterns: "upload not found"
//	UPL002 - Cancelled               Patterns: "context canceled", "interrupt"
//	UPL003 - Timed out               Patterns: "context deadline exceeded", "timeout"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check the log for the original
// error when a user reports ERR000.
//
// # Pattern Matching
//
// PostgreSQL errors are matched on their SQLSTATE first. Everything else is
// matched case-insensitively with strings.Contains; the first match wins,
// so specific patterns come before general ones.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgDuplicate = UserMessage{
		Message: "A record with this key already exists",
		Action:  "Search for the lab ID and delete or replace the existing data",
		Code:    "DB001",
	}
	msgNotNull = UserMessage{
		Message: "A required database value is missing",
		Action:  "Check that every row has a lab ID",
		Code:    "DB002",
	}
	msgForeignKey = UserMessage{
		Message: "Referenced record does not exist",
		Action:  "Import the metadata for this lab ID first",
		Code:    "DB003",
	}
	msgBusy = UserMessage{
		Message: "The database is busy",
		Action:  "Close other programs using the database and try again",
		Code:    "DB006",
	}
	msgNoSchema = UserMessage{
		Message: "Database tables are missing",
		Action:  "Restart fungaldb so the tables are created",
		Code:    "DB007",
	}
)

// pgCodeMessages maps PostgreSQL SQLSTATE codes to user messages.
var pgCodeMessages = map[string]UserMessage{
	"23505": msgDuplicate,
	"23502": msgNotNull,
	"23503": msgForeignKey,
	"40P01": msgBusy,
	"42P01": msgNoSchema,
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Database Errors (DB001-DB007)
	// Constraint violations and connectivity problems.
	// =========================================================================
	{pattern: "duplicate key", msg: msgDuplicate},
	{pattern: "unique constraint", msg: msgDuplicate},
	{pattern: "not null constraint", msg: msgNotNull},
	{pattern: "violates not-null", msg: msgNotNull},
	{pattern: "foreign key constraint", msg: msgForeignKey},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Check the database URL and that the server is running",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{pattern: "database is locked", msg: msgBusy},
	{pattern: "sqlite_busy", msg: msgBusy},
	{pattern: "deadlock", msg: msgBusy},
	{pattern: "no such table", msg: msgNoSchema},

	// =========================================================================
	// Validation Errors (VAL001-VAL009)
	// A sheet row or header failed validation; nothing was imported.
	// =========================================================================
	{
		pattern: "invalid date",
		msg: UserMessage{
			Message: "Invalid date format detected",
			Action:  "Use YYYY-MM-DD, MM/DD/YYYY, or Jan 15, 2024",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid number",
		msg: UserMessage{
			Message: "Invalid number format detected",
			Action:  "Use plain decimal numbers such as 98.5",
			Code:    "VAL002",
		},
	},
	{
		pattern: "required field",
		msg: UserMessage{
			Message: "Required field is empty",
			Action:  "Fill in every required column, including the lab ID",
			Code:    "VAL003",
		},
	},
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "Required column is missing from the sheet",
			Action:  "Check that all required columns are present in your file",
			Code:    "VAL004",
		},
	},
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "The lab ID header row was not found",
			Action:  "Make sure the lab ID column header appears near the top of the sheet",
			Code:    "VAL005",
		},
	},
	{
		pattern: "invalid enum",
		msg: UserMessage{
			Message: "Value is not in the allowed list",
			Action:  "Check the allowed values for this column in the config file",
			Code:    "VAL006",
		},
	},
	{
		pattern: "invalid bool",
		msg: UserMessage{
			Message: "Invalid yes/no value",
			Action:  "Use yes/no, true/false, or 1/0",
			Code:    "VAL007",
		},
	},
	{
		pattern: "duplicate lab id",
		msg: UserMessage{
			Message: "A lab ID appears more than once in the file",
			Action:  "Merge the duplicate rows and import again",
			Code:    "VAL008",
		},
	},
	{
		pattern: "unexpected columns",
		msg: UserMessage{
			Message: "The sheet has columns that are not configured",
			Action:  "Remove the columns or set schema.allow_extra_columns",
			Code:    "VAL009",
		},
	},
	{
		pattern: "duplicate columns",
		msg: UserMessage{
			Message: "The sheet repeats a column header",
			Action:  "Rename or remove the repeated column",
			Code:    "VAL009",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE006)
	// The input file could not be opened or parsed.
	// =========================================================================
	{
		pattern: "no such file or directory",
		msg: UserMessage{
			Message: "File not found",
			Action:  "Check the file name and the import directory",
			Code:    "FILE001",
		},
	},
	{
		pattern: "cannot find the file",
		msg: UserMessage{
			Message: "File not found",
			Action:  "Check the file name and the import directory",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is comma-separated with balanced quotes",
			Code:    "FILE002",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "This file type cannot be imported",
			Action:  "Save the sheet as .csv or .xlsx",
			Code:    "FILE003",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The file has no data rows",
			Action:  "Check that the file contains data below the header",
			Code:    "FILE004",
		},
	},
	{
		pattern: "no sequences found",
		msg: UserMessage{
			Message: "The FASTA file contains no sequences",
			Action:  "Check that records start with a '>' header line",
			Code:    "FILE005",
		},
	},
	{
		pattern: "not a valid zip file",
		msg: UserMessage{
			Message: "The workbook is damaged or not an .xlsx file",
			Action:  "Re-save the workbook from your spreadsheet program",
			Code:    "FILE006",
		},
	},

	// =========================================================================
	// Lab ID Errors (LAB001-LAB003)
	// =========================================================================
	{
		pattern: "lab id not found",
		msg: UserMessage{
			Message: "No data is stored for this lab ID",
			Action:  "Import the metadata for this lab ID first",
			Code:    "LAB001",
		},
	},
	{
		pattern: "lab id is empty",
		msg: UserMessage{
			Message: "A lab ID is required",
			Action:  "Enter a lab ID",
			Code:    "LAB002",
		},
	},
	{
		pattern: "search keyword is empty",
		msg: UserMessage{
			Message: "A search keyword is required",
			Action:  "Enter a lab ID or any word to search for",
			Code:    "LAB003",
		},
	},

	// =========================================================================
	// Export Errors (EXP001-EXP004)
	// =========================================================================
	{
		pattern: "columns do not match",
		msg: UserMessage{
			Message: "The results do not fit the columns of the existing file",
			Action:  "Overwrite the file or export to a new one",
			Code:    "EXP001",
		},
	},
	{
		pattern: "unsupported export format",
		msg: UserMessage{
			Message: "This export format is not supported",
			Action:  "Use a file name ending in .csv, .xlsx or .txt",
			Code:    "EXP002",
		},
	},
	{
		pattern: "nosuchbucket",
		msg: UserMessage{
			Message: "The S3 bucket does not exist",
			Action:  "Check the bucket name in the destination",
			Code:    "EXP003",
		},
	},
	{
		pattern: "accessdenied",
		msg: UserMessage{
			Message: "Access to the destination was denied",
			Action:  "Check your credentials and permissions",
			Code:    "EXP004",
		},
	},
	{
		pattern: "permission denied",
		msg: UserMessage{
			Message: "Access to the destination was denied",
			Action:  "Check your credentials and permissions",
			Code:    "EXP004",
		},
	},

	// =========================================================================
	// Import History Errors (UPL001-UPL003)
	// =========================================================================
	{
		pattern: "upload not found",
		msg: UserMessage{
			Message: "This import is not in the history",
			Action:  "List the import history and pick an entry",
			Code:    "UPL001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The operation was cancelled",
			Action:  "Start it again when ready",
			Code:    "UPL002",
		},
	},
	{
		pattern: "interrupt",
		msg: UserMessage{
			Message: "The operation was cancelled",
			Action:  "Start it again when ready",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The operation timed out",
			Action:  "Please try again",
			Code:    "UPL003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The operation timed out",
			Action:  "Please try again",
			Code:    "UPL003",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or check the log",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	msg := MapError(fmt.Errorf("import: %w", ErrLabIDNotFound))
//	// msg.Code == "LAB001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if msg, ok := pgCodeMessages[pgErr.Code]; ok {
			return msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matched a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
