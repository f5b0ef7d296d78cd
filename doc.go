// Package objcgen generates Objective-C source text from protobuf file
// descriptors. "Generate" here means rendering the .pbobjc.h and
// .pbobjc.m files that the GPB runtime consumes; it does not compile
// .proto source, which is expected to be done beforehand (for example
// with protoc producing a descriptor set, or any in-process compiler
// yielding protoreflect descriptors).
//
// The entry point is the Generator type, which maps each input file
// descriptor to a header/implementation pair:
//
//	gen := &objcgen.Generator{
//		Options:  opts,
//		Prefixes: registry,
//	}
//	files, err := gen.Generate(ctx, fileDescriptors...)
//
// Class prefixes for generated names come from three places, in order:
// the file's own objc_class_prefix option, the expected-prefixes file
// loaded into a PrefixRegistry, and (when enabled) a prefix derived from
// the proto package. The expected-prefixes and package-exception files
// are simple line-oriented text parsed by the lineparser subpackage.
//
// Generation of multiple files can take advantage of multiple CPU cores;
// see Generator.MaxParallelism.
package objcgen
