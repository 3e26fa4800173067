// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package form declares the input schemas accepted by the blog and checks
// them. Every field is required; nothing else is enforced.
package form

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MsgRequired is shown next to an empty required field.
const MsgRequired = "This field is required."

// Register is the sign-up form.
type Register struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password,raw" validate:"required,notblank"`
	Email    string `form:"email" validate:"required"`
}

// Login is the sign-in form.
type Login struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password,raw" validate:"required,notblank"`
}

// Post is the create/edit post form. Author and date come from the server.
type Post struct {
	Title    string `form:"title" validate:"required"`
	Subtitle string `form:"subtitle" validate:"required"`
	ImgURL   string `form:"img_url" validate:"required"`
	Body     string `form:"body" validate:"required"`
}

// Comment is the comment form on a post page.
type Comment struct {
	Body string `form:"body" validate:"required"`
}

// Errors maps form field names to a message.
type Errors map[string]string

// Has reports whether field has an error.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Get returns the error for field, or "".
func (e Errors) Get(field string) string {
	return e[field]
}

// Valid reports whether there are no errors.
func (e Errors) Valid() bool {
	return len(e) == 0
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report errors under the HTML field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	// Passwords are kept verbatim, so blankness is checked separately.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Validate checks a form struct and returns its field errors.
func Validate(f any) Errors {
	errs := Errors{}

	err := validate.Struct(f)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["_form"] = err.Error()
		return errs
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "notblank":
			errs[fe.Field()] = MsgRequired
		default:
			errs[fe.Field()] = "Invalid value."
		}
	}
	return errs
}

// Decode fills the string fields of the struct pointed to by dst from the
// request's form values, keyed by their `form` tags. Values are trimmed so
// whitespace-only input counts as empty, except for fields tagged ",raw".
func Decode(r *http.Request, dst any) error {
	if err := r.ParseForm(); err != nil {
		return err
	}

	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return errors.New("form: Decode needs a pointer to a struct")
	}
	v = v.Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, opts, _ := strings.Cut(field.Tag.Get("form"), ",")
		if name == "" || name == "-" || field.Type.Kind() != reflect.String {
			continue
		}
		value := r.PostForm.Get(name)
		if opts != "raw" {
			value = strings.TrimSpace(value)
		}
		v.Field(i).SetString(value)
	}
	return nil
}
