package errors

// Convenience constructors for the pipeline's error taxonomy.

// Content loading and header parsing

func ParseError(path, reason string) *BuildError {
	return New(CategoryParse, SeverityError, reason).
		WithContext("path", path)
}

func ValidationError(path, field, reason string) *BuildError {
	return New(CategoryValidation, SeverityError, "validation failed: "+reason).
		WithContext("path", path).
		WithContext("field", field)
}

// Shortcode expansion

func ShortcodeParseError(path, reason string) *BuildError {
	return New(CategoryShortcode, SeverityError, "shortcode parse error: "+reason).
		WithContext("path", path)
}

func UnknownShortcodeError(path, name string) *BuildError {
	return New(CategoryShortcode, SeverityError, "unknown shortcode '"+name+"'").
		WithContext("path", path).
		WithContext("shortcode", name)
}

// Site assembly

func RouteConflictError(route, path, existingPath string) *BuildError {
	return New(CategoryConflict, SeverityFatal, "duplicate route '"+route+"'").
		WithContext("route", route).
		WithContext("path", path).
		WithContext("existing_path", existingPath)
}

func DataConflictError(key, path, existingPath string) *BuildError {
	return New(CategoryConflict, SeverityFatal, "conflicting data value for key '"+key+"'").
		WithContext("key", key).
		WithContext("path", path).
		WithContext("existing_path", existingPath)
}

// Output writing

func GuardViolation(target, reason string) *BuildError {
	return New(CategoryGuard, SeverityFatal, "refusing to clean unsafe target: "+reason).
		WithContext("target", target)
}

func IOError(op, path string, cause error) *BuildError {
	return Wrap(cause, CategoryIO, SeverityFatal, op+" failed").
		WithContext("path", path)
}

// Configuration

func ConfigNotFound(path string) *BuildError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(path, reason string) *BuildError {
	return New(CategoryConfig, SeverityFatal, "invalid configuration: "+reason).
		WithContext("path", path)
}

func InternalError(message string, cause error) *BuildError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
