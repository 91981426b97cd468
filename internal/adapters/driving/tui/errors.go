package tui

import "errors"

// ErrMissingConvertService is returned when the convert service is not provided.
var ErrMissingConvertService = errors.New("tui: convert service is required")

// ErrCancelled is returned when the user quits before the conversion finishes.
var ErrCancelled = errors.New("tui: conversion cancelled")
