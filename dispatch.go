package catalystwan

import (
	"bytes"
	"context"
	"encoding/json"
	"maps"
	"reflect"
)

// Call invokes the operation on host. Guards run first; payload and params
// are prepared before anything is sent. Transport errors are returned
// unchanged.
func (op *Operation[A, R]) Call(ctx context.Context, host *Endpoints, args A) (R, error) {
	var zero R
	info := op.info
	logger := host.Logger()

	if err := info.Versions().check(ctx, logger, info.Name, host.APIVersion()); err != nil {
		return zero, err
	}
	if err := info.View().check(ctx, logger, info.Name, host.SessionRole()); err != nil {
		return zero, err
	}

	req, err := op.prepare(host, args)
	if err != nil {
		return zero, err
	}

	ctx = NewOperationContext(ctx, info)
	send := HandlerFunc(host.transport.Request)
	var resp Response
	if chain := chainInterceptors(host.interceptors); chain != nil {
		resp, err = chain(ctx, req, send)
	} else {
		resp, err = send(ctx, req)
	}
	if err != nil {
		return zero, err
	}
	return decodeResponse[R](resp, info.Return, info.ResponseKey)
}

// URL materializes the operation URL for args, without the base path.
func (op *Operation[A, R]) URL(args A) (string, error) {
	rv := reflect.ValueOf(args)
	values := make(map[string]string, len(op.args.url))
	for _, f := range op.args.url {
		fv := rv.Field(f.index)
		if f.hasDefault && fv.IsZero() {
			values[f.name] = f.def
			continue
		}
		values[f.name] = formatURLValue(fv)
	}
	return op.info.Template.Format(values)
}

func (op *Operation[A, R]) prepare(host *Endpoints, args A) (*Request, error) {
	info := op.info
	path, err := op.URL(args)
	if err != nil {
		return nil, err
	}
	req := &Request{
		Method:  info.Method,
		URL:     host.basePath + path,
		Options: maps.Clone(info.TransportOptions),
	}

	rv := reflect.ValueOf(args)
	if op.args.payload >= 0 {
		body, err := preparePayload(rv.Field(op.args.payload).Interface(), info.Payload, info.Payload.Kind == KindJSON)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.PreparedBody = *body
		}
	}
	if op.args.params >= 0 {
		req.Params, err = prepareParams(rv.Field(op.args.params).Interface())
		if err != nil {
			return nil, err
		}
	}
	return req, nil
}

// decodeResponse converts resp into the declared return.
func decodeResponse[R any](resp Response, spec TypeSpec, key string) (R, error) {
	var out R
	target := reflect.ValueOf(&out).Elem()
	rt := target.Type()

	switch spec.Kind {
	case KindNull:
		return out, nil

	case KindJSON:
		doc, err := resp.JSON()
		if err != nil {
			return out, err
		}
		if key != "" {
			obj, ok := doc.(map[string]any)
			if !ok {
				return out, Errorf(CodeDecodeType, "cannot select %q from JSON %s", key, describeJSON(resp.Bytes()))
			}
			doc = obj[key]
		}
		if doc != nil {
			target.Set(reflect.ValueOf(doc))
		}
		return out, nil

	case KindText:
		target.SetString(resp.Text())
		return out, nil

	case KindBytes:
		target.SetBytes(bytes.Clone(resp.Bytes()))
		return out, nil

	case KindMapping:
		if err := json.Unmarshal(resp.Bytes(), &out); err != nil {
			return out, wrapError(CodeDecodeType, err, "cannot decode response as %s: %v", rt, err)
		}
		return out, nil

	case KindStream:
		target.Set(reflect.ValueOf(bytes.NewReader(resp.Bytes())))
		return out, nil

	case KindModel:
		if rt.Kind() == reflect.Pointer {
			p := reflect.New(rt.Elem())
			if err := resp.DecodeModel(key, p.Interface()); err != nil {
				return out, err
			}
			target.Set(p)
			return out, nil
		}
		if err := resp.DecodeModel(key, &out); err != nil {
			return out, err
		}
		return out, nil

	case KindSequence:
		if rt.Kind() == reflect.Pointer {
			p := reflect.New(rt.Elem())
			if err := resp.DecodeSequence(key, p.Interface().(SequenceTarget)); err != nil {
				return out, err
			}
			target.Set(p)
			return out, nil
		}
		seq, ok := any(&out).(SequenceTarget)
		if !ok {
			return out, Errorf(CodeDecodeType, "%s cannot receive sequence elements", rt)
		}
		if err := resp.DecodeSequence(key, seq); err != nil {
			return out, err
		}
		return out, nil
	}
	return out, Errorf(CodeDecodeType, "cannot decode response into %s", rt)
}
